package cmd

import (
	"strings"

	"github.com/bnema/memochat/internal/application"
	"github.com/spf13/cobra"
)

func newAskCmd(app *app) *cobra.Command {
	var pin string
	var greet bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []application.SessionOption
			if !greet {
				opts = append(opts, application.WithoutGreeting())
			}
			if err := login(cmd, app, pin, opts...); err != nil {
				return err
			}
			if greet {
				if err := printMessages(cmd.OutOrStdout(), app.service.Messages()); err != nil {
					return err
				}
			}

			return send(cmd.Context(), cmd.OutOrStdout(), app, strings.Join(args, " "), false)
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "PIN (default: $"+pinEnvVar+" or prompt)")
	cmd.Flags().BoolVar(&greet, "greet", false, "Run the greeting exchange before the message")
	return cmd
}
