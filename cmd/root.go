package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shopvoice",
		Short:         "Drive a web storefront with spoken commands",
		Long:          "shopvoice turns a spoken or typed shopping command into a plan with an ensemble of language models, carries the plan out on the storefront and replies with a short confirmation.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newInterpretCmd(app),
		newShellCmd(app),
		newModelsCmd(app),
		newCredentialsCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
