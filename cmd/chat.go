package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chatview "github.com/bnema/memochat/internal/adapters/render/chat"
	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chatHelp = "commands: /facts, /forget <key>, /usage, /logout, /quit"

func newChatCmd(app *app) *cobra.Command {
	var pin string
	var noGreeting bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, pin, noGreeting)
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN (default: $"+pinEnvVar+" or prompt)")
	cmd.Flags().BoolVar(&noGreeting, "no-greeting", false, "Skip the personalized greeting")
	return cmd
}

func runChat(cmd *cobra.Command, app *app, pin string, noGreeting bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var opts []application.SessionOption
	if noGreeting {
		opts = append(opts, application.WithoutGreeting())
	}

	configured, err := app.service.IsPinConfigured(ctx)
	if err != nil {
		return fmt.Errorf("read pin status: %w", err)
	}
	if configured {
		err = login(cmd, app, pin, opts...)
	} else {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No PIN configured yet.")
		var chosen string
		chosen, err = newPinInput(cmd, pin).choose(cmd.ErrOrStderr())
		if err == nil {
			err = app.service.SetPin(ctx, chosen, opts...)
		}
		err = pinErrorOrNil(app, err)
	}
	if err != nil {
		return err
	}
	defer app.service.Logout()

	if err := printMessages(out, app.service.Messages()); err != nil {
		return err
	}
	if err := printUsage(cmd, app); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, chatHelp)

	reader := lineReader(cmd)
	spin := chatview.IsTerminal(out)
	for {
		line, err := readLine(reader, out, "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := runChatCommand(cmd, app, line)
			if err != nil || done {
				return err
			}
			continue
		}

		err = send(ctx, out, app, line, spin)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrQuotaExceeded), errors.Is(err, domain.ErrBusy):
		default:
			app.logger.Debug("turn failed", zap.Error(err))
		}
	}
}

func runChatCommand(cmd *cobra.Command, app *app, line string) (bool, error) {
	out := cmd.OutOrStdout()
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/logout":
		app.service.Logout()
		_, err := fmt.Fprintln(out, "logged out")
		return true, err
	case "/facts":
		rendered, err := chatview.RenderFacts(app.service.Facts())
		if err != nil {
			return false, fmt.Errorf("render facts: %w", err)
		}
		_, err = fmt.Fprintln(out, rendered)
		return false, err
	case "/forget":
		if arg == "" {
			_, err := fmt.Fprintln(out, "usage: /forget <key>")
			return false, err
		}
		app.service.DeleteFact(cmd.Context(), arg)
		_, err := fmt.Fprintf(out, "forgot %s\n", arg)
		return false, err
	case "/usage":
		return false, printUsage(cmd, app)
	default:
		_, err := fmt.Fprintln(out, chatHelp)
		return false, err
	}
}

func printUsage(cmd *cobra.Command, app *app) error {
	usage, err := app.service.Usage(cmd.Context())
	if err != nil {
		return fmt.Errorf("read usage: %w", err)
	}
	rendered, err := chatview.RenderUsage(usage, chatview.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render usage: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func pinErrorOrNil(app *app, err error) error {
	if err == nil {
		return nil
	}
	return pinError(app.catalog, err)
}
