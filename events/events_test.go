package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	var got []int64

	handler := func(ctx context.Context, e Event) {
		mu.Lock()
		got = append(got, e.(WhisperCreatedEvent).GuildID)
		mu.Unlock()
		wg.Done()
	}
	bus.Subscribe(EventTypeWhisperCreated, handler)
	bus.Subscribe(EventTypeWhisperCreated, handler)

	bus.Emit(context.Background(), WhisperCreatedEvent{GuildID: 42, Number: 1})
	wg.Wait()

	assert.Equal(t, []int64{42, 42}, got)
}

func TestBus_EmitIgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()

	called := make(chan struct{}, 1)
	bus.Subscribe(EventTypeWhisperClosed, func(ctx context.Context, e Event) {
		called <- struct{}{}
	})

	bus.Emit(context.Background(), WhisperCreatedEvent{GuildID: 42})

	select {
	case <-called:
		t.Fatal("handler for a different event type was called")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotPropagate(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypeModerationAction, func(ctx context.Context, e Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeModerationAction, func(ctx context.Context, e Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), ModerationActionEvent{GuildID: 42, CaseID: 1})
	wg.Wait()
}

func TestTransactionalBus_FlushAndDiscard(t *testing.T) {
	real := NewBus()
	tx := NewTransactionalBus(real)

	var mu sync.Mutex
	var seen []EventType
	var wg sync.WaitGroup

	real.Subscribe(EventTypeConfigChanged, func(ctx context.Context, e Event) {
		mu.Lock()
		seen = append(seen, e.Type())
		mu.Unlock()
		wg.Done()
	})

	tx.Publish(ConfigChangedEvent{GuildID: 42, Key: "xp_rate"})
	tx.Discard()
	tx.Flush(context.Background())

	mu.Lock()
	assert.Empty(t, seen)
	mu.Unlock()

	wg.Add(1)
	tx.Publish(ConfigChangedEvent{GuildID: 42, Key: "prefix"})
	tx.Flush(context.Background())
	wg.Wait()

	assert.Equal(t, []EventType{EventTypeConfigChanged}, seen)
}
