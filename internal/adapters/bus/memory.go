// Package bus is the in-process fan-out for calendar change events.
package bus

import (
	"sync"

	"github.com/sana-care/sana-cli/internal/ports"
)

type Memory struct {
	mu   sync.Mutex
	next int
	subs map[int]func(ports.CalendarChange)
}

var _ ports.CalendarEvents = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{subs: map[int]func(ports.CalendarChange){}}
}

// Publish delivers the change to every subscriber synchronously, in
// unspecified order. Subscribers must not block.
func (m *Memory) Publish(change ports.CalendarChange) {
	m.mu.Lock()
	fns := make([]func(ports.CalendarChange), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (m *Memory) Subscribe(fn func(ports.CalendarChange)) (cancel func()) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
