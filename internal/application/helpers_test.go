package application

import (
	"context"
	"sync"
	"time"

	"github.com/sana-care/sana-cli/internal/domain"
	"github.com/sana-care/sana-cli/internal/ports"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock { return &fixedClock{now: now} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeScheduleAPI serves canned slots per date range and counts fetches.
type fakeScheduleAPI struct {
	mu             sync.Mutex
	slotsByRange   map[string][]domain.ScheduleSlot
	errByRange     map[string]error
	treatmentSlots []domain.ScheduleSlot
	treatmentErr   error
	related        []domain.ScheduleSlot

	availableCalls map[string]int
	treatmentCalls int
}

var _ ScheduleAPI = (*fakeScheduleAPI)(nil)

func newFakeScheduleAPI() *fakeScheduleAPI {
	return &fakeScheduleAPI{
		slotsByRange:   map[string][]domain.ScheduleSlot{},
		errByRange:     map[string]error{},
		availableCalls: map[string]int{},
	}
}

func rangeKey(startDate, endDate string) string { return startDate + ".." + endDate }

func (f *fakeScheduleAPI) setSlots(startDate, endDate string, slots ...domain.ScheduleSlot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slotsByRange[rangeKey(startDate, endDate)] = slots
	delete(f.errByRange, rangeKey(startDate, endDate))
}

func (f *fakeScheduleAPI) setErr(startDate, endDate string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errByRange[rangeKey(startDate, endDate)] = err
}

func (f *fakeScheduleAPI) AvailableSlots(_ context.Context, startDate, endDate, _ string) ([]domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := rangeKey(startDate, endDate)
	f.availableCalls[key]++
	if err := f.errByRange[key]; err != nil {
		return nil, err
	}

	slots := make([]domain.ScheduleSlot, len(f.slotsByRange[key]))
	copy(slots, f.slotsByRange[key])
	return slots, nil
}

func (f *fakeScheduleAPI) TreatmentSlots(context.Context) ([]domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.treatmentCalls++
	if f.treatmentErr != nil {
		return nil, f.treatmentErr
	}
	slots := make([]domain.ScheduleSlot, len(f.treatmentSlots))
	copy(slots, f.treatmentSlots)
	return slots, nil
}

func (f *fakeScheduleAPI) RelatedSlots(context.Context, string) ([]domain.ScheduleSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.related, nil
}

func (f *fakeScheduleAPI) calls(startDate, endDate string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.availableCalls[rangeKey(startDate, endDate)]
}

type fakeBookingAPI struct {
	mu        sync.Mutex
	createErr error
	cancelErr error
	creates   []domain.SlotID
	cancels   []string
}

var _ BookingAPI = (*fakeBookingAPI)(nil)

func (f *fakeBookingAPI) CreateSession(_ context.Context, slotID domain.SlotID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, slotID)
	return f.createErr
}

func (f *fakeBookingAPI) CancelSession(_ context.Context, sessionID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, sessionID)
	return f.cancelErr
}

func (f *fakeBookingAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

type fakeTreatmentAPI struct {
	mu           sync.Mutex
	hasTreatment bool
	err          error
	calls        int
}

var _ TreatmentAPI = (*fakeTreatmentAPI)(nil)

func (f *fakeTreatmentAPI) ActiveTreatment(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.hasTreatment, f.err
}

type recordingEvents struct {
	mu        sync.Mutex
	published []ports.CalendarChange
}

var _ ports.CalendarEvents = (*recordingEvents)(nil)

func (r *recordingEvents) Publish(change ports.CalendarChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, change)
}

func (r *recordingEvents) Subscribe(func(ports.CalendarChange)) (cancel func()) {
	return func() {}
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}
