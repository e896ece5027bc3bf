package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCancelCmd(app *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a booked session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			err := runFetchSpinner(cmd.Context(), cmd.OutOrStdout(), "Cancelling session...", func(ctx context.Context) error {
				return app.booking.Cancel(ctx, sessionID, reason)
			})
			if err != nil {
				return describeError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cancelled session %s.\n", sessionID)
			return err
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why you are cancelling")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}
