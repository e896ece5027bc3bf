package cmd

import (
	"errors"
	"fmt"

	renderschedule "github.com/sana-care/sana-cli/internal/adapters/render/schedule"
	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sign-in state and treatment mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			profile, err := app.auth.Profile(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrNotAuthenticated) {
					_, printErr := fmt.Fprintln(cmd.OutOrStdout(), "Not signed in. Run `sana login`.")
					return printErr
				}
				return describeError(err)
			}

			mode, err := app.treatment.Resolve(ctx)
			if err != nil {
				return describeError(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderschedule.RenderStatus(profile, mode))
			return err
		},
	}
}
