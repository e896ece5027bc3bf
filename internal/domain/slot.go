package domain

import (
	"fmt"
	"time"
)

type SlotID string

type AvailabilityStatus string

const (
	SlotAvailable AvailabilityStatus = "available"
	SlotTaken     AvailabilityStatus = "taken"
)

type SessionState string

const (
	SessionPending   SessionState = "PENDING"
	SessionConfirmed SessionState = "CONFIRMED"
	SessionCancelled SessionState = "CANCELLED"
)

// ScheduleSlot is a bookable (or booked) therapist time slot. Slots are
// created server-side when a therapist publishes availability; the client
// only ever mutates them through the booking orchestrator's optimistic patch.
type ScheduleSlot struct {
	ID               SlotID             `json:"slotId"`
	TherapistID      string             `json:"therapistId"`
	TherapistName    string             `json:"therapistName,omitempty"`
	Date             string             `json:"date"`      // YYYY-MM-DD
	StartTime        string             `json:"startTime"` // HH:MM
	EndTime          string             `json:"endTime"`
	Status           AvailabilityStatus `json:"availabilityStatus"`
	ReservedByUserID string             `json:"reservedByUserId,omitempty"`
	SessionID        string             `json:"scheduleSessionId,omitempty"`
	SessionState     SessionState       `json:"sessionState,omitempty"`
}

// StartsAt combines Date and StartTime in the given location.
func (s ScheduleSlot) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot start %q %q: %w", s.Date, s.StartTime, err)
	}
	return start, nil
}

// WindowKey identifies one cached availability window. Exactly one live
// window exists per key.
type WindowKey struct {
	StartDate string
	EndDate   string
	Mode      TreatmentMode
}

func (k WindowKey) String() string {
	return fmt.Sprintf("%s..%s/%s", k.StartDate, k.EndDate, k.Mode)
}

// NextWeek returns the key for the adjacent forward window, used for
// opportunistic prefetch.
func (k WindowKey) NextWeek() (WindowKey, error) {
	start, err := time.Parse("2006-01-02", k.StartDate)
	if err != nil {
		return WindowKey{}, fmt.Errorf("parse window start date %q: %w", k.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", k.EndDate)
	if err != nil {
		return WindowKey{}, fmt.Errorf("parse window end date %q: %w", k.EndDate, err)
	}

	return WindowKey{
		StartDate: start.AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   end.AddDate(0, 0, 7).Format("2006-01-02"),
		Mode:      k.Mode,
	}, nil
}

// AvailabilityWindow is the cached slot sequence for one window key.
type AvailabilityWindow struct {
	Key       WindowKey
	Slots     []ScheduleSlot
	FetchedAt time.Time
}

func (w AvailabilityWindow) Slot(id SlotID) (ScheduleSlot, bool) {
	for _, slot := range w.Slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return ScheduleSlot{}, false
}
