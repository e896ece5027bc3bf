package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"go.uber.org/zap"
)

// ScheduleAPI is the slice of the HTTP client the availability layer needs.
type ScheduleAPI interface {
	AvailableSlots(ctx context.Context, startDate, endDate, therapistID string) ([]domain.ScheduleSlot, error)
	TreatmentSlots(ctx context.Context) ([]domain.ScheduleSlot, error)
	RelatedSlots(ctx context.Context, scheduleID string) ([]domain.ScheduleSlot, error)
}

type AvailabilityConfig struct {
	// TTL is how long a cached window is served at all.
	TTL time.Duration
	// StaleAfter is the stale-while-revalidate threshold: a window older
	// than this (but within TTL) is served immediately while a background
	// refresh runs.
	StaleAfter time.Duration
	// SelfServicePoll and AssignedPoll drive Watch. Assigned mode polls on
	// a short leash because a therapist can create sessions at any time.
	SelfServicePoll time.Duration
	AssignedPoll    time.Duration
}

func (c AvailabilityConfig) withDefaults() AvailabilityConfig {
	if c.TTL <= 0 {
		c.TTL = 2 * time.Minute
	}
	if c.StaleAfter <= 0 || c.StaleAfter > c.TTL {
		c.StaleAfter = c.TTL / 2
	}
	if c.SelfServicePoll <= 0 {
		c.SelfServicePoll = 60 * time.Second
	}
	if c.AssignedPoll <= 0 {
		c.AssignedPoll = 15 * time.Second
	}
	return c
}

type cachedWindow struct {
	window     domain.AvailabilityWindow
	refreshing bool
}

// AvailabilityService caches schedule windows per (start, end, mode) key.
// Mutations are last-writer-wins per key, except that a slot with an
// in-flight optimistic reservation keeps its patched state until the
// reservation settles.
type AvailabilityService struct {
	api   ScheduleAPI
	cfg   AvailabilityConfig
	clock ports.Clock
	log   *zap.Logger

	mu      sync.Mutex
	windows map[domain.WindowKey]*cachedWindow
	pending map[domain.SlotID]struct{}
}

func NewAvailabilityService(api ScheduleAPI, cfg AvailabilityConfig, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AvailabilityService{
		api:     api,
		cfg:     cfg.withDefaults(),
		clock:   ports.SystemClock{},
		log:     logger,
		windows: map[domain.WindowKey]*cachedWindow{},
		pending: map[domain.SlotID]struct{}{},
	}
}

// WithClock overrides the time source, for tests.
func (s *AvailabilityService) WithClock(clock ports.Clock) *AvailabilityService {
	s.clock = clock
	return s
}

// Window returns the cached window for key, fetching it when missing or
// expired. A window past the staleness threshold but inside its TTL is
// returned immediately while a background refresh runs. Requesting a window
// also prefetches the adjacent forward week; prefetch failures are dropped.
func (s *AvailabilityService) Window(ctx context.Context, key domain.WindowKey) (domain.AvailabilityWindow, error) {
	if !key.Mode.Valid() {
		return domain.AvailabilityWindow{}, fmt.Errorf("invalid treatment mode %q", key.Mode)
	}

	now := s.clock.Now()

	s.mu.Lock()
	entry, ok := s.windows[key]
	if ok {
		age := now.Sub(entry.window.FetchedAt)
		if age < s.cfg.TTL {
			window := cloneWindow(entry.window)
			if age >= s.cfg.StaleAfter && !entry.refreshing {
				entry.refreshing = true
				go s.revalidate(key)
			}
			s.mu.Unlock()
			return window, nil
		}
		// Expired by time, not evicted manually.
		delete(s.windows, key)
	}
	s.mu.Unlock()

	window, err := s.fetch(ctx, key)
	if err != nil {
		return domain.AvailabilityWindow{}, err
	}
	s.install(window)

	if key.Mode == domain.ModeSelfService {
		go s.prefetchNext(key)
	}

	return s.snapshot(key, window), nil
}

// Related fetches the therapist's other slots for the same schedule. Related
// slots are advisory and never cached.
func (s *AvailabilityService) Related(ctx context.Context, scheduleID string) ([]domain.ScheduleSlot, error) {
	slots, err := s.api.RelatedSlots(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Refetch forces an authoritative fetch for key, replacing whatever is
// cached. This is the rollback path after a rejected reservation: the prior
// value is never guessed back.
func (s *AvailabilityService) Refetch(ctx context.Context, key domain.WindowKey) (domain.AvailabilityWindow, error) {
	window, err := s.fetch(ctx, key)
	if err != nil {
		return domain.AvailabilityWindow{}, err
	}
	s.install(window)
	return s.snapshot(key, window), nil
}

// Invalidate drops every cached window overlapping the date range.
func (s *AvailabilityService) Invalidate(startDate, endDate string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.windows {
		if rangesOverlap(key.StartDate, key.EndDate, startDate, endDate) {
			delete(s.windows, key)
		}
	}
}

// Slot finds a slot in any cached window.
func (s *AvailabilityService) Slot(id domain.SlotID) (domain.ScheduleSlot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.windows {
		if slot, ok := entry.window.Slot(id); ok {
			return slot, true
		}
	}
	return domain.ScheduleSlot{}, false
}

// KeysContaining lists the cached window keys whose range covers the date.
func (s *AvailabilityService) KeysContaining(date string) []domain.WindowKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []domain.WindowKey
	for key := range s.windows {
		if key.StartDate <= date && date <= key.EndDate {
			keys = append(keys, key)
		}
	}
	return keys
}

// ApplyOptimistic patches the slot to taken/PENDING in every cached window
// before the server has answered, and shields it from concurrent refetches
// until SettlePending is called.
func (s *AvailabilityService) ApplyOptimistic(id domain.SlotID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = struct{}{}
	s.patchLocked(id, func(slot *domain.ScheduleSlot) {
		slot.Status = domain.SlotTaken
		slot.ReservedByUserID = userID
		slot.SessionState = domain.SessionPending
	})
}

// ConfirmOptimistic upgrades a confirmed reservation's session state in place.
func (s *AvailabilityService) ConfirmOptimistic(id domain.SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patchLocked(id, func(slot *domain.ScheduleSlot) {
		slot.SessionState = domain.SessionConfirmed
	})
}

// SettlePending releases the refetch shield for the slot.
func (s *AvailabilityService) SettlePending(id domain.SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Watch polls the window at the cadence of its mode and invokes fn with each
// fresh copy, until ctx is done. Poll failures are logged and the previous
// window stands.
func (s *AvailabilityService) Watch(ctx context.Context, key domain.WindowKey, fn func(domain.AvailabilityWindow)) error {
	window, err := s.Window(ctx, key)
	if err != nil {
		return err
	}
	fn(window)

	interval := s.cfg.SelfServicePoll
	if key.Mode == domain.ModeAssigned {
		interval = s.cfg.AssignedPoll
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			window, err := s.Refetch(ctx, key)
			if err != nil {
				s.log.Warn("availability poll failed", zap.String("window", key.String()), zap.Error(err))
				continue
			}
			fn(window)
		}
	}
}

func (s *AvailabilityService) fetch(ctx context.Context, key domain.WindowKey) (domain.AvailabilityWindow, error) {
	var slots []domain.ScheduleSlot
	var err error

	switch key.Mode {
	case domain.ModeAssigned:
		// Assigned sessions come back unranged; the window filters them.
		slots, err = s.api.TreatmentSlots(ctx)
		if err == nil {
			slots = filterRange(slots, key.StartDate, key.EndDate)
		}
	default:
		slots, err = s.api.AvailableSlots(ctx, key.StartDate, key.EndDate, "")
	}
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("fetch window %s: %w", key, err)
	}

	return domain.AvailabilityWindow{Key: key, Slots: slots, FetchedAt: s.clock.Now()}, nil
}

// install applies last-writer-wins per key, except slots with an in-flight
// optimistic reservation: their patched state survives until settled.
func (s *AvailabilityService) install(window domain.AvailabilityWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.windows[window.Key]; ok && len(s.pending) > 0 {
		for i := range window.Slots {
			if _, inFlight := s.pending[window.Slots[i].ID]; !inFlight {
				continue
			}
			if kept, ok := prev.window.Slot(window.Slots[i].ID); ok {
				window.Slots[i] = kept
			}
		}
	}

	s.windows[window.Key] = &cachedWindow{window: window}
}

// snapshot re-reads the freshly installed window so the caller observes any
// pending patches that were preserved.
func (s *AvailabilityService) snapshot(key domain.WindowKey, fallback domain.AvailabilityWindow) domain.AvailabilityWindow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.windows[key]; ok {
		return cloneWindow(entry.window)
	}
	return fallback
}

// cloneWindow copies the slot slice so callers never share the cache's
// backing array with a later optimistic patch.
func cloneWindow(w domain.AvailabilityWindow) domain.AvailabilityWindow {
	slots := make([]domain.ScheduleSlot, len(w.Slots))
	copy(slots, w.Slots)
	w.Slots = slots
	return w
}

func (s *AvailabilityService) revalidate(key domain.WindowKey) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	window, err := s.fetch(ctx, key)

	s.mu.Lock()
	if entry, ok := s.windows[key]; ok {
		entry.refreshing = false
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Debug("background revalidate failed", zap.String("window", key.String()), zap.Error(err))
		return
	}
	s.install(window)
}

// prefetchNext warms the adjacent forward window. Failures are swallowed:
// a prefetch must never surface an error to the caller.
func (s *AvailabilityService) prefetchNext(key domain.WindowKey) {
	next, err := key.NextWeek()
	if err != nil {
		return
	}

	s.mu.Lock()
	_, cached := s.windows[next]
	s.mu.Unlock()
	if cached {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	window, err := s.fetch(ctx, next)
	if err != nil {
		s.log.Debug("prefetch failed", zap.String("window", next.String()), zap.Error(err))
		return
	}
	s.install(window)
}

func (s *AvailabilityService) patchLocked(id domain.SlotID, apply func(*domain.ScheduleSlot)) {
	for _, entry := range s.windows {
		slots := entry.window.Slots
		for i := range slots {
			if slots[i].ID == id {
				apply(&slots[i])
			}
		}
	}
}

func filterRange(slots []domain.ScheduleSlot, startDate, endDate string) []domain.ScheduleSlot {
	filtered := make([]domain.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		if startDate <= slot.Date && slot.Date <= endDate {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

func rangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && bStart <= aEnd
}
