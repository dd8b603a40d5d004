package messaging

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festival-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	return NewInMemoryEventBus(config)
}

func TestPublish_RoutesByEventType(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var scheduleEvents, announcementEvents int
	require.NoError(t, bus.Subscribe(shared.EventScheduleChanged, func(shared.Event) error {
		scheduleEvents++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventAnnouncementPosted, func(shared.Event) error {
		announcementEvents++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewScheduleChangedEvent(uuid.New().String(), "", "", "")))
	require.NoError(t, bus.Publish(shared.NewScheduleChangedEvent(uuid.New().String(), "", "", "")))
	require.NoError(t, bus.Publish(shared.NewAnnouncementPostedEvent(uuid.New().String(), "t", "b")))

	assert.Equal(t, 2, scheduleEvents)
	assert.Equal(t, 1, announcementEvents)
}

func TestPublish_NoHandlersIsNotAnError(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.NoError(t, bus.Publish(shared.NewAnnouncementPostedEvent(uuid.New().String(), "t", "b")))
}

func TestPublish_AsyncWaitsOnClose(t *testing.T) {
	config := DefaultInMemoryEventBusConfig()
	config.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(config)

	var mu sync.Mutex
	handled := 0
	require.NoError(t, bus.Subscribe(shared.EventScheduleChanged, func(shared.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewScheduleChangedEvent(uuid.New().String(), "", "", "")))
	}

	require.NoError(t, bus.Close())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, handled)
}

func TestClosedBusRejectsOperations(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewAnnouncementPostedEvent(uuid.New().String(), "t", "b")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventScheduleChanged, func(shared.Event) error { return nil }), ErrEventBusClosed)
}
