package cmd

import (
	"fmt"
	"strings"

	chatview "github.com/bnema/memochat/internal/adapters/render/chat"
	"github.com/bnema/memochat/internal/application"
	"github.com/spf13/cobra"
)

func newFactsCmd(app *app) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List or delete remembered facts",
	}
	cmd.PersistentFlags().StringVar(&pin, "pin", "", "PIN (default: $"+pinEnvVar+" or prompt)")

	cmd.AddCommand(newFactsListCmd(app, &pin), newFactsDeleteCmd(app, &pin))
	return cmd
}

func newFactsListCmd(app *app, pin *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the stored facts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := login(cmd, app, *pin, application.WithoutGreeting()); err != nil {
				return err
			}

			facts := app.service.Facts()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), facts)
			}

			rendered, err := chatview.RenderFacts(facts)
			if err != nil {
				return fmt.Errorf("render facts: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	return cmd
}

func newFactsDeleteCmd(app *app, pin *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm", "forget"},
		Short:   "Delete a stored fact",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := login(cmd, app, *pin, application.WithoutGreeting()); err != nil {
				return err
			}

			key := strings.TrimSpace(args[0])
			app.service.DeleteFact(cmd.Context(), key)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "forgot %s (facts: %d)\n", key, len(app.service.Facts()))
			return err
		},
	}
}
