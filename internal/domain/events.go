package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventScanStarted        EventType = "ScanStarted"
	EventScanCompleted      EventType = "ScanCompleted"
	EventTreeLoaded         EventType = "TreeLoaded"
	EventNodeUpdated        EventType = "NodeUpdated"
	EventProcessingStarted  EventType = "ProcessingStarted"
	EventProcessingFinished EventType = "ProcessingFinished"
	EventFiltersChanged     EventType = "FiltersChanged"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ScanStartedEvent is emitted when repository discovery begins
type ScanStartedEvent struct {
	Root string
}

func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// ScanCompletedEvent is emitted when repository discovery completes
type ScanCompletedEvent struct {
	Root       string
	ReposFound int
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// TreeLoadedEvent is emitted when the canonical node list has been replaced
type TreeLoadedEvent struct {
	Root  string
	Count int
}

func (e TreeLoadedEvent) Type() EventType { return EventTreeLoaded }

// NodeUpdatedEvent is emitted whenever an operation changed a node's fields
type NodeUpdatedEvent struct {
	Path string
}

func (e NodeUpdatedEvent) Type() EventType { return EventNodeUpdated }

// ProcessingStartedEvent is emitted when a top-level command starts
type ProcessingStartedEvent struct {
	Description string
}

func (e ProcessingStartedEvent) Type() EventType { return EventProcessingStarted }

// ProcessingFinishedEvent is emitted when a top-level command ends
type ProcessingFinishedEvent struct {
	Description string
}

func (e ProcessingFinishedEvent) Type() EventType { return EventProcessingFinished }

// FiltersChangedEvent is emitted when a filter predicate toggles
type FiltersChangedEvent struct {
	Filters Filters
}

func (e FiltersChangedEvent) Type() EventType { return EventFiltersChanged }

// ErrorEvent is emitted when an error occurs outside a node operation
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	BaseDir string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
