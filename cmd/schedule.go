package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	renderschedule "github.com/sana-care/sana-cli/internal/adapters/render/schedule"
	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *app) *cobra.Command {
	var week string
	var watch bool
	var related string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show therapist availability for a week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startDate, endDate, err := weekRange(week, app.now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			mode, err := app.treatment.Resolve(ctx)
			if err != nil {
				return describeError(err)
			}
			key := domain.WindowKey{StartDate: startDate, EndDate: endDate, Mode: mode}

			opts := renderschedule.RenderOptions{Now: app.now()}
			if profile, profileErr := app.auth.Profile(ctx); profileErr == nil {
				opts.SelfUserID = profile.ID
			}

			if related != "" {
				var slots []domain.ScheduleSlot
				err = runFetchSpinner(ctx, cmd.OutOrStdout(), "Loading related slots...", func(ctx context.Context) error {
					slots, err = app.availability.Related(ctx, related)
					return err
				})
				if err != nil {
					return describeError(err)
				}

				window := domain.AvailabilityWindow{Key: key, Slots: slots}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderschedule.Render(window, opts))
				return err
			}

			if watch {
				// Watch delivers the initial window itself before polling.
				err = app.availability.Watch(ctx, key, func(window domain.AvailabilityWindow) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderschedule.Render(window, opts))
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return describeError(err)
			}

			var window domain.AvailabilityWindow
			err = runFetchSpinner(ctx, cmd.OutOrStdout(), "Loading schedule...", func(ctx context.Context) error {
				window, err = app.availability.Window(ctx, key)
				return err
			})
			if err != nil {
				return describeError(err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderschedule.Render(window, opts))
			return err
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "First day of the week to show, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling and re-render as the schedule changes")
	cmd.Flags().StringVar(&related, "related", "", "Show the therapist's other slots for this schedule id instead")

	return cmd
}

// weekRange expands a start date into a 7-day window.
func weekRange(week string, now time.Time) (string, string, error) {
	start := now
	if week != "" {
		parsed, err := time.Parse("2006-01-02", week)
		if err != nil {
			return "", "", fmt.Errorf("parse week %q: expected YYYY-MM-DD: %w", week, err)
		}
		start = parsed
	}

	return start.Format("2006-01-02"), start.AddDate(0, 0, 6).Format("2006-01-02"), nil
}
