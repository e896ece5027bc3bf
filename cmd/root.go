package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sana",
		Short:         "sana: book and manage therapy sessions from the terminal",
		Long:          "sana signs you in to the sana backend, shows weekly therapist availability, books and cancels sessions, and keeps your session tokens in a secure store.",
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

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newScheduleCmd(app),
		newBookCmd(app),
		newCancelCmd(app),
		newStatusCmd(app),
		newConfigCmd(),
	)

	return rootCmd
}
