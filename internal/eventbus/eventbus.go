package eventbus

import (
	"runtime/debug"
	"sync"

	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   uint64

	qmu    sync.Mutex
	queue  []DomainEvent
	notify chan struct{}

	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers: make(map[EventType][]subscription),
		notify:   make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks and never
// drops; a slow subscriber only delays delivery.
func (b *bus) Publish(event DomainEvent) {
	switch event.Type() {
	case domain.EventNodeUpdated:
		// too frequent to log
	default:
		logger.Debugf("EventBus: publishing event %s", event.Type())
	}

	b.qmu.Lock()
	b.queue = append(b.queue, event)
	b.qmu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher and discards queued events
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case <-b.notify:
			for _, event := range b.take() {
				select {
				case <-b.quit:
					return
				default:
				}
				b.publishTo(event)
			}

		case <-b.quit:
			b.take()
			return
		}
	}
}

// take empties the queue and returns what was in it
func (b *bus) take() []DomainEvent {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	batch := b.queue
	b.queue = nil
	return batch
}

func (b *bus) publishTo(event DomainEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s.handler, event)
	}
}

// deliver calls a handler on the dispatcher goroutine so that subscribers
// observe events in publish order
func (b *bus) deliver(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	h(event)
}
