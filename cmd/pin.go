package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/spf13/cobra"
)

const pinEnvVar = "MEMOCHAT_PIN"

var errPinMismatch = errors.New("pins do not match")

func newPinCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the access PIN",
	}

	cmd.AddCommand(newPinStatusCmd(app), newPinSetCmd(app))
	return cmd
}

func newPinStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a PIN is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configured, err := app.service.IsPinConfigured(cmd.Context())
			if err != nil {
				return fmt.Errorf("read pin status: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"configured": configured})
			}
			state := "not configured"
			if configured {
				state = "configured"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "pin: %s\n", state)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	return cmd
}

func newPinSetCmd(app *app) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Configure the PIN on first run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := newPinInput(cmd, pin)
			chosen, err := input.choose(cmd.ErrOrStderr())
			if err != nil {
				return pinError(app.catalog, err)
			}

			err = app.service.SetPin(cmd.Context(), chosen, application.WithoutGreeting())
			if err != nil {
				return pinError(app.catalog, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "pin configured")
			return err
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN to configure (default: $"+pinEnvVar+" or prompt)")
	return cmd
}

// pinInput resolves a PIN from the --pin flag, then $MEMOCHAT_PIN, then one
// line of input per prompt.
type pinInput struct {
	flag   string
	reader *bufio.Reader
}

func newPinInput(cmd *cobra.Command, flag string) *pinInput {
	return &pinInput{flag: strings.TrimSpace(flag), reader: lineReader(cmd)}
}

func (p *pinInput) preset() (string, bool) {
	if p.flag != "" {
		return p.flag, true
	}
	if env := strings.TrimSpace(os.Getenv(pinEnvVar)); env != "" {
		return env, true
	}
	return "", false
}

func (p *pinInput) read(prompt io.Writer, label string) (string, error) {
	if pin, ok := p.preset(); ok {
		return pin, nil
	}
	return readLine(p.reader, prompt, label)
}

func (p *pinInput) choose(prompt io.Writer) (string, error) {
	if pin, ok := p.preset(); ok {
		return pin, nil
	}

	first, err := readLine(p.reader, prompt, "New PIN (4 digits): ")
	if err != nil {
		return "", err
	}
	second, err := readLine(p.reader, prompt, "Confirm PIN: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPinMismatch
	}
	return first, nil
}

func lineReader(cmd *cobra.Command) *bufio.Reader {
	if r, ok := cmd.InOrStdin().(*bufio.Reader); ok {
		return r
	}
	r := bufio.NewReader(cmd.InOrStdin())
	cmd.SetIn(r)
	return r
}

func readLine(r *bufio.Reader, prompt io.Writer, label string) (string, error) {
	if label != "" {
		_, _ = fmt.Fprint(prompt, label)
	}
	line, err := r.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	case errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// pinError maps gate errors to the localized text shown to the user while
// keeping the sentinel for errors.Is.
func pinError(catalog locale.Catalog, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPin):
		return fmt.Errorf("%s: %w", catalog.InvalidPin, err)
	case errors.Is(err, errPinMismatch):
		return fmt.Errorf("%s: %w", catalog.PinMismatch, err)
	case errors.Is(err, domain.ErrPinAlreadySet):
		return fmt.Errorf("a PIN is already configured: %w", err)
	case errors.Is(err, domain.ErrWrongPin):
		return fmt.Errorf("%s: %w", catalog.WrongPin, err)
	case errors.Is(err, domain.ErrCorruptData):
		return fmt.Errorf("%s: %w", catalog.CorruptData, err)
	case errors.Is(err, domain.ErrPinNotSet):
		return fmt.Errorf("no PIN configured, run `memochat pin set` first: %w", err)
	case errors.Is(err, domain.ErrBusy):
		return fmt.Errorf("%s: %w", catalog.Busy, err)
	default:
		return err
	}
}
