package domain

import "fmt"

// ReservationIntent is the ephemeral value object behind one booking attempt.
// It exists only for the duration of the orchestrator transaction.
type ReservationIntent struct {
	SlotID SlotID `validate:"required"`
	Reason string `validate:"required"`
}

type ReservationState string

const (
	ReservationIdle       ReservationState = "idle"
	ReservationApplied    ReservationState = "optimistically_applied"
	ReservationConfirmed  ReservationState = "confirmed"
	ReservationRolledBack ReservationState = "rolled_back"
)

// reservationTransitions is the full transition table. Confirmed and
// RolledBack are terminal; a settled reservation cannot move again.
var reservationTransitions = map[ReservationState][]ReservationState{
	ReservationIdle:       {ReservationApplied},
	ReservationApplied:    {ReservationConfirmed, ReservationRolledBack},
	ReservationConfirmed:  {},
	ReservationRolledBack: {},
}

func (s ReservationState) CanTransition(to ReservationState) bool {
	for _, next := range reservationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ReservationState) Terminal() bool {
	return len(reservationTransitions[s]) == 0
}

// Reservation tracks one booking attempt through the state machine.
type Reservation struct {
	Intent ReservationIntent
	state  ReservationState
}

func NewReservation(intent ReservationIntent) *Reservation {
	return &Reservation{Intent: intent, state: ReservationIdle}
}

func (r *Reservation) State() ReservationState { return r.state }

// Transition moves the reservation to the next state, rejecting anything the
// transition table does not allow.
func (r *Reservation) Transition(to ReservationState) error {
	if !r.state.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrReservationState, r.state, to)
	}
	r.state = to
	return nil
}
