package cmd

import (
	"fmt"

	chatview "github.com/bnema/memochat/internal/adapters/render/chat"
	"github.com/spf13/cobra"
)

func newUsageCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show today's message quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			usage, err := app.service.Usage(cmd.Context())
			if err != nil {
				return fmt.Errorf("read usage: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), usage)
			}

			rendered, err := chatview.RenderUsage(usage, chatview.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render usage: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	return cmd
}
