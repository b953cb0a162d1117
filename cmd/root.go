package cmd

import (
	"github.com/spf13/cobra"
)

const skipWireAnnotation = "memochat/skip-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "memochat",
		Short:         "PIN-protected chat assistant that remembers facts about you",
		Long:          "memochat is a terminal chat assistant backed by a hosted model. It keeps a small obfuscated memory of facts about you behind a 4-digit PIN and limits usage to a daily message quota.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipWireAnnotation] == "true" {
				return nil
			}
			return app.wire(cmd.Context(), cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.opts.configPath, "config", "", "Config file (default ~/.memochat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&app.opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPinCmd(app),
		newChatCmd(app),
		newAskCmd(app),
		newFactsCmd(app),
		newUsageCmd(app),
		newServeCmd(app),
	)

	closeAfterRun(rootCmd, app)
	return rootCmd
}

// closeAfterRun releases the wired app once a command finishes, including
// when it fails.
func closeAfterRun(cmd *cobra.Command, app *app) {
	for _, child := range cmd.Commands() {
		closeAfterRun(child, app)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		defer app.close()
		return run(c, args)
	}
}
