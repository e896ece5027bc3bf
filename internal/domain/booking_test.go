package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationFollowsTransitionTable(t *testing.T) {
	t.Parallel()

	res := NewReservation(ReservationIntent{SlotID: "slot-1", Reason: "first session"})
	assert.Equal(t, ReservationIdle, res.State())

	require.NoError(t, res.Transition(ReservationApplied))
	require.NoError(t, res.Transition(ReservationConfirmed))
	assert.True(t, res.State().Terminal())
}

func TestReservationCannotConfirmFromIdle(t *testing.T) {
	t.Parallel()

	res := NewReservation(ReservationIntent{SlotID: "slot-1", Reason: "checkup"})

	err := res.Transition(ReservationConfirmed)
	require.ErrorIs(t, err, ErrReservationState)
	assert.Equal(t, ReservationIdle, res.State())
}

func TestReservationTerminalStatesRejectFurtherTransitions(t *testing.T) {
	t.Parallel()

	res := NewReservation(ReservationIntent{SlotID: "slot-1", Reason: "checkup"})
	require.NoError(t, res.Transition(ReservationApplied))
	require.NoError(t, res.Transition(ReservationRolledBack))

	// Confirming an already rolled-back intent must be unrepresentable.
	err := res.Transition(ReservationConfirmed)
	require.ErrorIs(t, err, ErrReservationState)
	assert.Equal(t, ReservationRolledBack, res.State())
}

func TestSlotStartsAt(t *testing.T) {
	t.Parallel()

	slot := ScheduleSlot{Date: "2024-05-06", StartTime: "14:30"}

	start, err := slot.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC), start)
}

func TestSlotStartsAtRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	slot := ScheduleSlot{Date: "06/05/2024", StartTime: "14:30"}

	_, err := slot.StartsAt(time.UTC)
	require.Error(t, err)
}

func TestWindowKeyNextWeek(t *testing.T) {
	t.Parallel()

	key := WindowKey{StartDate: "2024-05-06", EndDate: "2024-05-12", Mode: ModeSelfService}

	next, err := key.NextWeek()
	require.NoError(t, err)
	assert.Equal(t, WindowKey{StartDate: "2024-05-13", EndDate: "2024-05-19", Mode: ModeSelfService}, next)
}

func TestTokenPairValidRequiresBothHalves(t *testing.T) {
	t.Parallel()

	assert.True(t, TokenPair{AccessToken: "a", RefreshToken: "r"}.Valid())
	assert.False(t, TokenPair{AccessToken: "a"}.Valid())
	assert.False(t, TokenPair{RefreshToken: "r"}.Valid())
	assert.False(t, TokenPair{}.Valid())
}

func TestWindowSlotLookup(t *testing.T) {
	t.Parallel()

	window := AvailabilityWindow{
		Slots: []ScheduleSlot{
			{ID: "slot-1"},
			{ID: "slot-2"},
		},
	}

	slot, ok := window.Slot("slot-2")
	require.True(t, ok)
	assert.Equal(t, SlotID("slot-2"), slot.ID)

	_, ok = window.Slot("slot-3")
	assert.False(t, ok)
}
