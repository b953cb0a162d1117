package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	chatview "github.com/bnema/memochat/internal/adapters/render/chat"
	"github.com/bnema/memochat/internal/application"
	"github.com/bnema/memochat/internal/domain"
	"github.com/spf13/cobra"
)

const maxPinAttempts = 3

// login opens a session, prompting for the PIN when no preset is given.
// Interactive entry is retried on a wrong PIN.
func login(cmd *cobra.Command, app *app, pinFlag string, opts ...application.SessionOption) error {
	ctx := cmd.Context()

	configured, err := app.service.IsPinConfigured(ctx)
	if err != nil {
		return fmt.Errorf("read pin status: %w", err)
	}
	if !configured {
		return pinError(app.catalog, domain.ErrPinNotSet)
	}

	input := newPinInput(cmd, pinFlag)
	_, preset := input.preset()

	for attempt := 1; ; attempt++ {
		pin, err := input.read(cmd.ErrOrStderr(), "PIN: ")
		if err != nil {
			return err
		}

		err = app.service.Login(ctx, pin, opts...)
		if err == nil {
			return nil
		}
		if preset || attempt >= maxPinAttempts || !retryableLogin(err) {
			return pinError(app.catalog, err)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), pinError(app.catalog, err))
	}
}

func retryableLogin(err error) bool {
	return errors.Is(err, domain.ErrWrongPin) || errors.Is(err, domain.ErrInvalidPin)
}

// send runs one turn and prints the produced messages. Rejected turns are
// reported with the localized notice instead of a raw error.
func send(ctx context.Context, out io.Writer, app *app, text string, spin bool) error {
	var produced []domain.Message
	work := func() error {
		var err error
		produced, err = app.service.SendMessage(ctx, text)
		return err
	}

	var err error
	if spin {
		err = chatview.WithSpinner(out, "thinking", work)
	} else {
		err = work()
	}

	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		produced = []domain.Message{domain.AssistantMessage(domain.MessageNotice, app.catalog.LimitReached)}
	case errors.Is(err, domain.ErrBusy):
		produced = []domain.Message{domain.AssistantMessage(domain.MessageNotice, app.catalog.Busy)}
	}

	if len(produced) > 0 {
		if printErr := printMessages(out, produced); printErr != nil {
			return printErr
		}
	}
	return err
}

func printMessages(out io.Writer, messages []domain.Message) error {
	rendered, err := chatview.RenderMessages(messages)
	if err != nil {
		return fmt.Errorf("render messages: %w", err)
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}

func writeJSON(out io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(out, string(payload))
	return err
}
