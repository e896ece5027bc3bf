package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"go.uber.org/zap"
)

// BookingAPI is the slice of the HTTP client the orchestrator needs.
type BookingAPI interface {
	CreateSession(ctx context.Context, slotID domain.SlotID, reason string) error
	CancelSession(ctx context.Context, sessionID, reason string) error
}

type BookingConfig struct {
	// Cutoff rejects slots starting within this window. Policy value, not an
	// invariant; product owns the exact threshold.
	Cutoff time.Duration
	// Location resolves slot-local start times. Nil means time.Local.
	Location *time.Location
}

func (c BookingConfig) withDefaults() BookingConfig {
	if c.Cutoff <= 0 {
		c.Cutoff = 5 * time.Minute
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// BookingService runs one reservation attempt as an optimistic cache
// mutation with rollback. The cache is patched before the server answers;
// a rejection replaces the affected windows with an authoritative refetch
// rather than guessing the prior value back.
type BookingService struct {
	api          BookingAPI
	availability *AvailabilityService
	treatment    *TreatmentService
	events       ports.CalendarEvents
	validate     *validator.Validate
	cfg          BookingConfig
	clock        ports.Clock
	log          *zap.Logger

	mu       sync.Mutex
	inflight map[domain.SlotID]struct{}
}

func NewBookingService(api BookingAPI, availability *AvailabilityService, treatment *TreatmentService, events ports.CalendarEvents, cfg BookingConfig, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BookingService{
		api:          api,
		availability: availability,
		treatment:    treatment,
		events:       events,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		cfg:          cfg.withDefaults(),
		clock:        ports.SystemClock{},
		log:          logger,
		inflight:     map[domain.SlotID]struct{}{},
	}
}

// WithClock overrides the time source, for tests.
func (s *BookingService) WithClock(clock ports.Clock) *BookingService {
	s.clock = clock
	return s
}

// Reserve books the slot named by intent on behalf of userID. The returned
// reservation is terminal: Confirmed, or RolledBack together with the error
// that settled it.
func (s *BookingService) Reserve(ctx context.Context, intent domain.ReservationIntent, userID string) (*domain.Reservation, error) {
	if err := s.validate.Struct(intent); err != nil {
		return nil, fmt.Errorf("invalid reservation intent: %w", err)
	}

	mode, err := s.treatment.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve treatment mode: %w", err)
	}
	if mode == domain.ModeAssigned {
		return nil, domain.ErrBookingNotAllowed
	}

	slot, ok := s.availability.Slot(intent.SlotID)
	if !ok {
		return nil, fmt.Errorf("slot %s is not in any loaded schedule window", intent.SlotID)
	}
	if slot.Status != domain.SlotAvailable {
		// A previous attempt's optimistic patch counts: the second of two
		// back-to-back attempts dies here without a network call.
		return nil, domain.ErrSlotConflict
	}
	if err := s.checkCutoff(slot); err != nil {
		return nil, err
	}

	if !s.begin(intent.SlotID) {
		return nil, domain.ErrSlotConflict
	}
	defer s.end(intent.SlotID)

	reservation := domain.NewReservation(intent)
	if err := reservation.Transition(domain.ReservationApplied); err != nil {
		return nil, err
	}
	s.availability.ApplyOptimistic(intent.SlotID, userID)

	// The reservation must settle even if the caller walks away; the cache
	// would otherwise be left holding a phantom PENDING slot.
	err = s.api.CreateSession(context.WithoutCancel(ctx), intent.SlotID, intent.Reason)
	if err == nil {
		if terr := reservation.Transition(domain.ReservationConfirmed); terr != nil {
			return reservation, terr
		}
		s.availability.ConfirmOptimistic(intent.SlotID)
		s.availability.SettlePending(intent.SlotID)
		s.events.Publish(ports.CalendarChange{StartDate: slot.Date, EndDate: slot.Date})
		s.log.Info("reservation confirmed", zap.String("slot", string(intent.SlotID)))
		return reservation, nil
	}

	if terr := reservation.Transition(domain.ReservationRolledBack); terr != nil {
		return reservation, errors.Join(err, terr)
	}
	s.availability.SettlePending(intent.SlotID)
	s.rollback(slot, err)

	switch {
	case errors.Is(err, domain.ErrSlotConflict):
		return reservation, fmt.Errorf("%w (taken while booking)", domain.ErrSlotConflict)
	default:
		return reservation, err
	}
}

// Cancel cancels a confirmed session and invalidates the affected windows.
func (s *BookingService) Cancel(ctx context.Context, sessionID, reason string) error {
	if err := s.validate.Var(sessionID, "required"); err != nil {
		return errors.New("session id is required")
	}
	if err := s.validate.Var(reason, "required"); err != nil {
		return errors.New("cancellation reason is required")
	}

	if err := s.api.CancelSession(context.WithoutCancel(ctx), sessionID, reason); err != nil {
		return fmt.Errorf("cancel session %s: %w", sessionID, err)
	}

	// The cancelled slot's date is unknown here; drop everything cached and
	// let the next read refetch.
	s.availability.Invalidate("0000-01-01", "9999-12-31")
	s.events.Publish(ports.CalendarChange{StartDate: "0000-01-01", EndDate: "9999-12-31"})
	s.log.Info("session cancelled", zap.String("session", sessionID))
	return nil
}

func (s *BookingService) checkCutoff(slot domain.ScheduleSlot) error {
	start, err := slot.StartsAt(s.cfg.Location)
	if err != nil {
		return err
	}
	if start.Sub(s.clock.Now()) < s.cfg.Cutoff {
		return domain.ErrBookingCutoff
	}
	return nil
}

// rollback restores cache truth after a failed reservation. Conflicts and
// validation rejections refetch the affected windows; a network failure
// additionally drops them first, because the local optimistic state cannot
// be trusted at all.
func (s *BookingService) rollback(slot domain.ScheduleSlot, cause error) {
	keys := s.availability.KeysContaining(slot.Date)
	if domain.IsNetworkError(cause) {
		s.availability.Invalidate(slot.Date, slot.Date)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if _, err := s.availability.Refetch(ctx, key); err != nil {
			s.log.Warn("rollback refetch failed", zap.String("window", key.String()), zap.Error(err))
		}
	}

	s.log.Info("reservation rolled back",
		zap.String("slot", string(slot.ID)),
		zap.NamedError("cause", cause))
}

func (s *BookingService) begin(id domain.SlotID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *BookingService) end(id domain.SlotID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}
