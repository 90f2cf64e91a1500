package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWhisperCreated   EventType = "whisper_created"
	EventTypeWhisperClosed    EventType = "whisper_closed"
	EventTypeModerationAction EventType = "moderation_action"
	EventTypeConfigChanged    EventType = "config_changed"
	EventTypeLevelUp          EventType = "level_up"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WhisperCreatedEvent is published after a whisper ticket is durably created
type WhisperCreatedEvent struct {
	GuildID  int64
	UserID   int64
	ThreadID int64
	Number   int64
}

func (e WhisperCreatedEvent) Type() EventType {
	return EventTypeWhisperCreated
}

// WhisperClosedEvent is published after an open whisper ticket is closed
type WhisperClosedEvent struct {
	GuildID       int64
	UserID        int64
	ThreadID      int64
	Number        int64
	ClosedByStaff bool
}

func (e WhisperClosedEvent) Type() EventType {
	return EventTypeWhisperClosed
}

// ModerationActionEvent is published after a moderation case is recorded
type ModerationActionEvent struct {
	GuildID     int64
	CaseID      int64
	UserID      int64
	Action      string
	Reason      string
	ModeratorID int64
}

func (e ModerationActionEvent) Type() EventType {
	return EventTypeModerationAction
}

// ConfigChangedEvent is published after a guild setting is written or removed
type ConfigChangedEvent struct {
	GuildID int64
	Key     string
	Removed bool
}

func (e ConfigChangedEvent) Type() EventType {
	return EventTypeConfigChanged
}

// LevelUpEvent is published when XP accrual pushes a member past a level
// boundary. ChannelID is where the triggering message was sent, so the
// announcement can land near the member when no level channel is configured.
type LevelUpEvent struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	OldLevel  int
	NewLevel  int
	XP        int64
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a guild critical section
// and flushes them to the underlying bus only after the durable write
// commits, so failed operations never announce themselves.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the originating request, so emit with a background
	// context rather than the possibly-cancelled caller context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
