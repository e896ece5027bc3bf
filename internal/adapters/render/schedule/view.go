// Package schedule renders availability windows for the terminal.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sana-care/sana-cli/internal/domain"
)

type RenderOptions struct {
	Now time.Time
	// SelfUserID highlights the signed-in user's own reservations.
	SelfUserID string
}

// Render draws one availability window grouped by day.
func Render(window domain.AvailabilityWindow, opts RenderOptions) string {
	return renderView(window, opts, newStyles())
}

func renderView(window domain.AvailabilityWindow, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("%s to %s", window.Key.StartDate, window.Key.EndDate)
	if window.Key.Mode == domain.ModeAssigned {
		header += " (scheduled by your therapist)"
	}

	lines := []string{
		s.title.Render("Therapy sessions"),
		s.header.Render(header),
	}

	if len(window.Slots) == 0 {
		lines = append(lines, s.empty.Render("No slots in this window."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, date := range slotDates(window.Slots) {
		lines = append(lines, s.section.Render(renderDay(date, window.Slots, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderDay(date string, slots []domain.ScheduleSlot, opts RenderOptions, s styles) string {
	parts := []string{s.day.Render(dayLabel(date))}

	for _, slot := range slots {
		if slot.Date != date {
			continue
		}
		parts = append(parts, renderSlot(slot, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderSlot(slot domain.ScheduleSlot, opts RenderOptions, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		s.time.Render(slot.StartTime+"-"+slot.EndTime),
		"  ",
		s.therapist.Render(slot.TherapistName),
		"  ",
		statusBadge(slot, opts, s),
	)

	if slot.ID != "" && slot.Status == domain.SlotAvailable {
		line += "  " + s.slot.Render(fmt.Sprintf("[%s]", slot.ID))
	}

	return line
}

func statusBadge(slot domain.ScheduleSlot, opts RenderOptions, s styles) string {
	if opts.SelfUserID != "" && slot.ReservedByUserID == opts.SelfUserID {
		switch slot.SessionState {
		case domain.SessionPending:
			return s.pending.Render("yours (pending)")
		case domain.SessionCancelled:
			return s.taken.Render("cancelled")
		default:
			return s.mine.Render("yours")
		}
	}

	switch slot.Status {
	case domain.SlotAvailable:
		return s.open.Render("open")
	default:
		return s.taken.Render("taken")
	}
}

// RenderStatus draws the sign-in status line used by `sana status`.
func RenderStatus(profile domain.Profile, mode domain.TreatmentMode) string {
	s := newStyles()

	name := profile.FullName
	if name == "" {
		name = profile.Email
	}

	lines := []string{
		s.title.Render("sana"),
		s.slot.Render("Signed in as " + name),
	}

	switch mode {
	case domain.ModeAssigned:
		lines = append(lines, s.pending.Render("Your sessions are scheduled by your therapist."))
	default:
		lines = append(lines, s.open.Render("You can book open slots yourself."))
	}

	if !profile.ProfileComplete {
		lines = append(lines, s.warning.Render("Your profile is incomplete; booking may be rejected."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func slotDates(slots []domain.ScheduleSlot) []string {
	seen := map[string]struct{}{}
	var dates []string
	for _, slot := range slots {
		if _, ok := seen[slot.Date]; ok {
			continue
		}
		seen[slot.Date] = struct{}{}
		dates = append(dates, slot.Date)
	}
	sort.Strings(dates)
	return dates
}

func dayLabel(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday 02 Jan")
}
