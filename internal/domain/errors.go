package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSessionExpired    = errors.New("session expired, sign in again")
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrSlotConflict      = errors.New("slot already reserved")
	ErrBookingNotAllowed = errors.New("booking is disabled while a therapist manages your sessions")
	ErrBookingCutoff     = errors.New("slot starts too soon to book")
	ErrReservationState  = errors.New("illegal reservation state transition")
)

// APIError is a non-2xx server response other than 401/409.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// NetworkError wraps a request that never produced a server response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
