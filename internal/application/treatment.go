package application

import (
	"context"
	"sync"
	"time"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
	"go.uber.org/zap"
)

type TreatmentAPI interface {
	ActiveTreatment(ctx context.Context) (bool, error)
}

// TreatmentService resolves whether the patient self-books or has an
// attending therapist. The answer is cached for several minutes; downstream
// code treats the mode as an opaque gate.
type TreatmentService struct {
	api   TreatmentAPI
	ttl   time.Duration
	clock ports.Clock
	log   *zap.Logger

	mu        sync.Mutex
	mode      domain.TreatmentMode
	fetchedAt time.Time
}

func NewTreatmentService(api TreatmentAPI, ttl time.Duration, logger *zap.Logger) *TreatmentService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TreatmentService{api: api, ttl: ttl, clock: ports.SystemClock{}, log: logger}
}

// WithClock overrides the time source, for tests.
func (s *TreatmentService) WithClock(clock ports.Clock) *TreatmentService {
	s.clock = clock
	return s
}

func (s *TreatmentService) Resolve(ctx context.Context) (domain.TreatmentMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.mode.Valid() && now.Sub(s.fetchedAt) < s.ttl {
		return s.mode, nil
	}

	hasTreatment, err := s.api.ActiveTreatment(ctx)
	if err != nil {
		return "", err
	}

	mode := domain.ModeSelfService
	if hasTreatment {
		mode = domain.ModeAssigned
	}

	s.mode = mode
	s.fetchedAt = now
	s.log.Debug("treatment mode resolved", zap.String("mode", string(mode)))
	return mode, nil
}

// Invalidate forces the next Resolve to hit the server.
func (s *TreatmentService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ""
}
