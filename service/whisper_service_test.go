package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"onwhisper/events"
	"onwhisper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deliveredResult(channelID int64) EmitResult {
	return EmitResult{Status: EmitDelivered, ChannelID: channelID}
}

func TestWhisperService_CreateAndCloseLifecycle(t *testing.T) {
	ctx := context.Background()

	created := &models.Whisper{
		GuildID:   42,
		UserID:    7,
		ThreadID:  555,
		Number:    1,
		IsOpen:    true,
		CreatedAt: time.Now().UTC(),
	}
	closedAt := time.Now().UTC()
	closed := &models.Whisper{
		GuildID:       42,
		UserID:        7,
		ThreadID:      555,
		Number:        1,
		IsOpen:        false,
		ClosedByStaff: true,
		CreatedAt:     created.CreatedAt,
		ClosedAt:      &closedAt,
	}

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("Create", ctx, int64(42), int64(7), int64(555)).Return(created, nil).Once()
	mockRepo.On("Close", ctx, int64(42), int64(555), true).Return(closed, nil).Once()

	mockRouter := new(MockLogRouter)
	mockRouter.On("Emit", ctx, int64(42), models.CategoryWhisper, mock.MatchedBy(func(e *LogEvent) bool {
		return e.Title == "Whisper Created"
	})).Return(deliveredResult(100)).Once()
	mockRouter.On("Emit", ctx, int64(42), models.CategoryWhisper, mock.MatchedBy(func(e *LogEvent) bool {
		return e.Title == "Whisper Closed"
	})).Return(deliveredResult(100)).Once()

	svc := NewWhisperService(mockRepo, mockRouter, NewGuildLocks(), events.NewBus())

	whisper, err := svc.Create(ctx, 42, 7, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(1), whisper.Number)
	assert.True(t, whisper.IsOpen)

	got, err := svc.CloseByThread(ctx, 42, 555, true)
	require.NoError(t, err)
	assert.False(t, got.IsOpen)
	assert.True(t, got.ClosedByStaff)

	mockRepo.AssertExpectations(t)
	mockRouter.AssertExpectations(t)
}

func TestWhisperService_CreatePublishesEventAfterCommit(t *testing.T) {
	ctx := context.Background()

	mockRouter := new(MockLogRouter)
	mockRouter.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(EmitResult{Status: EmitSuppressed, Reason: ReasonNoDestination})

	bus := events.NewBus()
	svc := NewWhisperService(newFakeWhisperRepo(), mockRouter, NewGuildLocks(), bus)

	var wg sync.WaitGroup
	wg.Add(1)
	var got events.WhisperCreatedEvent
	bus.Subscribe(events.EventTypeWhisperCreated, func(ctx context.Context, e events.Event) {
		got = e.(events.WhisperCreatedEvent)
		wg.Done()
	})

	_, err := svc.Create(ctx, 42, 7, 555)
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, int64(42), got.GuildID)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, int64(555), got.ThreadID)
	assert.Equal(t, int64(1), got.Number)
}

func TestWhisperService_CreateFailurePublishesNoEvent(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("Create", ctx, int64(42), int64(7), int64(555)).Return(nil, errors.New("connection lost"))

	bus := events.NewBus()
	svc := NewWhisperService(mockRepo, new(MockLogRouter), NewGuildLocks(), bus)

	published := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeWhisperCreated, func(ctx context.Context, e events.Event) {
		published <- struct{}{}
	})

	_, err := svc.Create(ctx, 42, 7, 555)
	require.Error(t, err)

	select {
	case <-published:
		t.Fatal("event published for a failed create")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWhisperService_CloseAlreadyClosed(t *testing.T) {
	ctx := context.Background()

	alreadyClosed := &models.Whisper{GuildID: 42, UserID: 7, ThreadID: 555, Number: 1}

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("Close", ctx, int64(42), int64(555), false).Return(nil, nil)
	mockRepo.On("GetByThread", ctx, int64(42), int64(555)).Return(alreadyClosed, nil)

	mockRouter := new(MockLogRouter)
	svc := NewWhisperService(mockRepo, mockRouter, NewGuildLocks(), events.NewBus())

	_, err := svc.CloseByThread(ctx, 42, 555, false)
	assert.ErrorIs(t, err, ErrNotOpen)
	mockRouter.AssertNotCalled(t, "Emit")
}

func TestWhisperService_CloseUnknownThread(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("Close", ctx, int64(42), int64(999), false).Return(nil, nil)
	mockRepo.On("GetByThread", ctx, int64(42), int64(999)).Return(nil, nil)

	svc := NewWhisperService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	_, err := svc.CloseByThread(ctx, 42, 999, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWhisperService_DeleteUnknownThread(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("Delete", ctx, int64(42), int64(999)).Return(false, nil)

	svc := NewWhisperService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	assert.ErrorIs(t, svc.DeleteByThread(ctx, 42, 999), ErrNotFound)
}

func TestWhisperService_GetByNumberNotFound(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWhisperRepository)
	mockRepo.On("GetByNumber", ctx, int64(42), int64(3)).Return(nil, nil)

	svc := NewWhisperService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	_, err := svc.GetByNumber(ctx, 42, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWhisperService_ValidationRejectsNonPositiveIDs(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWhisperRepository)
	svc := NewWhisperService(mockRepo, new(MockLogRouter), NewGuildLocks(), events.NewBus())

	_, err := svc.Create(ctx, 0, 7, 555)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, 42, -1, 555)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CloseByThread(ctx, 42, 0, false)
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertNotCalled(t, "Create")
}

// fakeWhisperRepo is an in-memory stand-in that mimics the store's numbering
// contract: the counter only moves forward, even across deletions.
type fakeWhisperRepo struct {
	mu       sync.Mutex
	counters map[int64]int64
	byThread map[int64]map[int64]*models.Whisper
}

func newFakeWhisperRepo() *fakeWhisperRepo {
	return &fakeWhisperRepo{
		counters: make(map[int64]int64),
		byThread: make(map[int64]map[int64]*models.Whisper),
	}
}

func (f *fakeWhisperRepo) Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counters[guildID]++
	w := &models.Whisper{
		GuildID:   guildID,
		UserID:    userID,
		ThreadID:  threadID,
		Number:    f.counters[guildID],
		IsOpen:    true,
		CreatedAt: time.Now().UTC(),
	}
	if f.byThread[guildID] == nil {
		f.byThread[guildID] = make(map[int64]*models.Whisper)
	}
	f.byThread[guildID][threadID] = w
	return w, nil
}

func (f *fakeWhisperRepo) GetByThread(ctx context.Context, guildID, threadID int64) (*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byThread[guildID][threadID], nil
}

func (f *fakeWhisperRepo) GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.byThread[guildID] {
		if w.Number == number {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWhisperRepo) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.byThread[guildID] {
		if w.UserID == userID && w.IsOpen {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWhisperRepo) ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []*models.Whisper
	for _, w := range f.byThread[guildID] {
		if w.IsOpen {
			open = append(open, w)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Number < open[j].Number })
	return open, nil
}

func (f *fakeWhisperRepo) Close(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.byThread[guildID][threadID]
	if w == nil || !w.IsOpen {
		return nil, nil
	}
	now := time.Now().UTC()
	w.IsOpen = false
	w.ClosedByStaff = closedByStaff
	w.ClosedAt = &now
	return w, nil
}

func (f *fakeWhisperRepo) Delete(ctx context.Context, guildID, threadID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byThread[guildID][threadID] == nil {
		return false, nil
	}
	delete(f.byThread[guildID], threadID)
	return true, nil
}

func TestWhisperService_ConcurrentCreatesGetDistinctSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	const n = 25

	mockRouter := new(MockLogRouter)
	mockRouter.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(EmitResult{Status: EmitSuppressed, Reason: ReasonNoDestination})

	svc := NewWhisperService(newFakeWhisperRepo(), mockRouter, NewGuildLocks(), events.NewBus())

	numbers := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := svc.Create(ctx, 42, int64(1000+i), int64(5000+i))
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- w.Number
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make([]int64, 0, n)
	for num := range numbers {
		seen = append(seen, num)
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })

	require.Len(t, seen, n)
	for i, num := range seen {
		assert.Equal(t, int64(i+1), num)
	}
}

func TestWhisperService_NumbersNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()

	mockRouter := new(MockLogRouter)
	mockRouter.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(EmitResult{Status: EmitSuppressed, Reason: ReasonNoDestination})

	svc := NewWhisperService(newFakeWhisperRepo(), mockRouter, NewGuildLocks(), events.NewBus())

	first, err := svc.Create(ctx, 42, 7, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Number)

	require.NoError(t, svc.DeleteByThread(ctx, 42, 555))

	second, err := svc.Create(ctx, 42, 8, 556)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Number)
}
