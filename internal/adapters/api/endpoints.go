package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sana-care/sana-cli/internal/domain"
)

// Login exchanges credentials for a token pair and persists it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	body := map[string]string{"email": email, "password": password}
	if err := c.Unauthenticated(ctx, "POST", "/api/auth/login", body, &tokens); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	pair := domain.TokenPair{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
	if !pair.Valid() {
		return fmt.Errorf("login: response missing token pair")
	}

	if err := c.tokens.Save(ctx, pair); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Logout clears the persisted pair. There is no server-side call to make.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	if err := c.Get(ctx, "/api/auth/me", &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// AvailableSlots lists open slots in the date range. therapistID is optional.
func (c *Client) AvailableSlots(ctx context.Context, startDate, endDate, therapistID string) ([]domain.ScheduleSlot, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)
	if therapistID != "" {
		query.Set("therapistId", therapistID)
	}

	var slots []domain.ScheduleSlot
	if err := c.Get(ctx, "/api/schedules/available?"+query.Encode(), &slots); err != nil {
		return nil, fmt.Errorf("fetch available slots: %w", err)
	}
	return slots, nil
}

// RelatedSlots lists the other slots published under the same schedule, i.e.
// the same therapist and day.
func (c *Client) RelatedSlots(ctx context.Context, scheduleID string) ([]domain.ScheduleSlot, error) {
	var slots []domain.ScheduleSlot
	if err := c.Get(ctx, "/api/schedules/available/by-schedule/"+url.PathEscape(scheduleID), &slots); err != nil {
		return nil, fmt.Errorf("fetch related slots: %w", err)
	}
	return slots, nil
}

// TreatmentSlots lists the sessions an attending therapist scheduled for the
// signed-in patient.
func (c *Client) TreatmentSlots(ctx context.Context) ([]domain.ScheduleSlot, error) {
	var slots []domain.ScheduleSlot
	if err := c.Get(ctx, "/api/sessions/my/treatment-sessions", &slots); err != nil {
		return nil, fmt.Errorf("fetch treatment sessions: %w", err)
	}
	return slots, nil
}

// CreateSession books a slot. A 409 from the server surfaces as
// domain.ErrSlotConflict.
func (c *Client) CreateSession(ctx context.Context, slotID domain.SlotID, reason string) error {
	body := map[string]string{
		"therapistScheduledId": string(slotID),
		"reason":               reason,
	}
	if err := c.Post(ctx, "/api/sessions", body, nil); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (c *Client) CancelSession(ctx context.Context, sessionID, reason string) error {
	body := map[string]string{
		"scheduleSessionId":  sessionID,
		"cancellationReason": reason,
	}
	if err := c.Post(ctx, "/api/sessions/cancel", body, nil); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	return nil
}

// ActiveTreatment reports whether a therapist currently manages the patient.
func (c *Client) ActiveTreatment(ctx context.Context) (bool, error) {
	var status struct {
		HasTreatment bool `json:"hasTreatment"`
	}
	if err := c.Get(ctx, "/api/treatments/my/active-status", &status); err != nil {
		return false, fmt.Errorf("fetch treatment status: %w", err)
	}
	return status.HasTreatment, nil
}
