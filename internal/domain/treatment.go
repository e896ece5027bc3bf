package domain

type TreatmentMode string

const (
	// ModeSelfService lets the patient book open slots themselves.
	ModeSelfService TreatmentMode = "self_service"
	// ModeAssigned means an attending therapist schedules sessions; the
	// client may only read its assigned sessions.
	ModeAssigned TreatmentMode = "assigned"
)

func (m TreatmentMode) Valid() bool {
	switch m {
	case ModeSelfService, ModeAssigned:
		return true
	default:
		return false
	}
}
