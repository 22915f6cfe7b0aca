package eventbus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
)

func TestEventBus(t *testing.T) {
	t.Parallel()

	t.Run("should deliver events in publish order", func(t *testing.T) {
		t.Parallel()

		// given
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		var paths []string
		done := make(chan struct{})
		bus.Subscribe(domain.EventNodeUpdated, func(e eventbus.DomainEvent) {
			mu.Lock()
			defer mu.Unlock()
			paths = append(paths, e.(domain.NodeUpdatedEvent).Path)
			if len(paths) == 3 {
				close(done)
			}
		})

		// when
		for _, p := range []string{"a", "b", "c"} {
			bus.Publish(domain.NodeUpdatedEvent{Path: p})
		}

		// then
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("events not delivered")
		}
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"a", "b", "c"}, paths)
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		defer bus.Close()

		received := make(chan string, 4)
		unsubscribe := bus.Subscribe(domain.EventScanCompleted, func(e eventbus.DomainEvent) {
			received <- e.(domain.ScanCompletedEvent).Root
		})
		bus.Subscribe(domain.EventScanCompleted, func(e eventbus.DomainEvent) {
			received <- "other:" + e.(domain.ScanCompletedEvent).Root
		})

		unsubscribe()
		bus.Publish(domain.ScanCompletedEvent{Root: "/src"})

		select {
		case got := <-received:
			assert.Equal(t, "other:/src", got)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
		assert.Empty(t, received)
	})

	t.Run("should survive a panicking handler", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		defer bus.Close()

		received := make(chan struct{}, 1)
		bus.Subscribe(domain.EventError, func(eventbus.DomainEvent) { panic("boom") })
		bus.Subscribe(domain.EventError, func(eventbus.DomainEvent) { received <- struct{}{} })

		bus.Publish(domain.ErrorEvent{Message: "x"})

		select {
		case <-received:
		case <-time.After(2 * time.Second):
			require.Fail(t, "second handler not called")
		}
	})

	t.Run("should deliver every event to a slow subscriber", func(t *testing.T) {
		t.Parallel()

		// given
		bus := eventbus.New()
		defer bus.Close()

		var mu sync.Mutex
		updates := 0
		bus.Subscribe(domain.EventNodeUpdated, func(eventbus.DomainEvent) {
			time.Sleep(200 * time.Microsecond)
			mu.Lock()
			updates++
			mu.Unlock()
		})
		finished := make(chan struct{})
		bus.Subscribe(domain.EventProcessingFinished, func(eventbus.DomainEvent) { close(finished) })

		// when: a bulk call over 600 nodes publishes two updates per node
		for i := 0; i < 1200; i++ {
			bus.Publish(domain.NodeUpdatedEvent{Path: "/src/repo"})
		}
		bus.Publish(domain.ProcessingFinishedEvent{Description: "Retrieve status for all repositories"})

		// then
		select {
		case <-finished:
		case <-time.After(10 * time.Second):
			t.Fatal("processing finished event lost")
		}
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1200, updates)
	})
}
