package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/config"
	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/logpipe"
	"gitbulk/internal/orchestrator"
)

// Deps are the services the interactive program runs on
type Deps struct {
	Orchestrator  *orchestrator.Orchestrator
	Bus           eventbus.EventBus
	Pipeline      *logpipe.Pipeline
	Config        *config.Config
	ConfigService config.ConfigService
}

var forwardedEvents = []domain.EventType{
	domain.EventScanStarted,
	domain.EventScanCompleted,
	domain.EventTreeLoaded,
	domain.EventNodeUpdated,
	domain.EventProcessingStarted,
	domain.EventProcessingFinished,
	domain.EventFiltersChanged,
	domain.EventError,
}

// Forward subscribes to the UI-relevant domain events and sends them to p
// in publication order. The returned func unsubscribes and stops forwarding.
func Forward(bus eventbus.EventBus, p *tea.Program) func() {
	eventChan := make(chan eventbus.DomainEvent, 256)
	done := make(chan struct{})

	unsubs := make([]func(), 0, len(forwardedEvents))
	for _, eventType := range forwardedEvents {
		unsubs = append(unsubs, bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			case <-done:
			}
		}))
	}

	go func() {
		for {
			select {
			case event := <-eventChan:
				p.Send(EventMsg{Event: event})
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, unsub := range unsubs {
				unsub()
			}
			close(done)
		})
	}
}

// Run starts the interactive tree and blocks until the user quits or ctx is done
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Clear runs on the UI goroutine, so changes are signalled without blocking
	changed := make(chan struct{}, 1)
	logView := logpipe.NewTextRenderer(deps.Config.Log.MaxLines, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	model := NewModel(ctx, Options{
		Orchestrator:  deps.Orchestrator,
		Config:        deps.Config,
		ConfigService: deps.ConfigService,
		Log:           logView,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(program)

	stop := Forward(deps.Bus, program)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deps.Pipeline.Run(ctx, logView)
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-changed:
				program.Send(logChangedMsg{})
			case <-ctx.Done():
				return
			}
		}
	}()

	_, err := program.Run()
	cancel()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		logger.Debug("UI interrupted")
		return nil
	}
	return err
}
