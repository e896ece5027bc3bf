package bus

import (
	"testing"

	"github.com/sana-care/sana-cli/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	t.Parallel()

	bus := NewMemory()

	var first, second []ports.CalendarChange
	bus.Subscribe(func(c ports.CalendarChange) { first = append(first, c) })
	bus.Subscribe(func(c ports.CalendarChange) { second = append(second, c) })

	change := ports.CalendarChange{StartDate: "2024-05-06", EndDate: "2024-05-12"}
	bus.Publish(change)

	assert.Equal(t, []ports.CalendarChange{change}, first)
	assert.Equal(t, []ports.CalendarChange{change}, second)
}

func TestCancelledSubscriptionStopsReceiving(t *testing.T) {
	t.Parallel()

	bus := NewMemory()

	var got int
	cancel := bus.Subscribe(func(ports.CalendarChange) { got++ })

	bus.Publish(ports.CalendarChange{})
	cancel()
	bus.Publish(ports.CalendarChange{})

	assert.Equal(t, 1, got)
}

func TestPublishWithoutSubscribersIsFine(t *testing.T) {
	t.Parallel()

	NewMemory().Publish(ports.CalendarChange{StartDate: "2024-05-06"})
}
