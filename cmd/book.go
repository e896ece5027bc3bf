package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newBookCmd(app *app) *cobra.Command {
	var reason string
	var week string

	cmd := &cobra.Command{
		Use:   "book <slot-id>",
		Short: "Book an open therapy slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slotID := domain.SlotID(args[0])
			ctx := cmd.Context()

			profile, err := app.auth.Profile(ctx)
			if err != nil {
				return describeError(err)
			}
			if !profile.ProfileComplete {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Your profile is incomplete; the server may reject this booking.")
			}

			mode, err := app.treatment.Resolve(ctx)
			if err != nil {
				return describeError(err)
			}
			if mode == domain.ModeAssigned {
				return describeError(domain.ErrBookingNotAllowed)
			}

			// Seed the cache so the orchestrator can see and patch the slot.
			startDate, endDate, err := weekRange(week, app.now())
			if err != nil {
				return err
			}
			key := domain.WindowKey{StartDate: startDate, EndDate: endDate, Mode: mode}
			if _, err := app.availability.Window(ctx, key); err != nil {
				return describeError(err)
			}

			intent := domain.ReservationIntent{SlotID: slotID, Reason: reason}
			err = runFetchSpinner(ctx, cmd.OutOrStdout(), "Booking slot...", func(ctx context.Context) error {
				_, reserveErr := app.booking.Reserve(ctx, intent, profile.ID)
				return reserveErr
			})
			if err != nil {
				return describeError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Booked slot %s.\n", slotID)
			return err
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why you are booking this session")
	cmd.Flags().StringVar(&week, "week", "", "Week containing the slot, YYYY-MM-DD (default current week)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

// describeError rewrites the data-layer errors users actually hit into
// actionable messages.
func describeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotAuthenticated):
		return errors.New("not signed in; run `sana login` first")
	case errors.Is(err, domain.ErrSessionExpired):
		return errors.New("your session expired; run `sana login` to sign in again")
	case errors.Is(err, domain.ErrSlotConflict):
		return errors.New("that slot is already reserved; pick another one with `sana schedule`")
	case errors.Is(err, domain.ErrBookingNotAllowed):
		return errors.New("your sessions are scheduled by your therapist; booking is disabled")
	case errors.Is(err, domain.ErrBookingCutoff):
		return errors.New("that slot starts too soon to book")
	default:
		return err
	}
}
