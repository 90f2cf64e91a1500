package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"onwhisper/events"
	"onwhisper/models"
)

// whisperService implements the WhisperService interface. It is the sole
// writer of whisper tickets: all mutations run inside the guild's lock, so
// numbering and state transitions are race-free.
type whisperService struct {
	repo   WhisperRepository
	router LogRouter
	locks  *GuildLocks
	bus    *events.Bus
}

// NewWhisperService creates a new whisper lifecycle service
func NewWhisperService(repo WhisperRepository, router LogRouter, locks *GuildLocks, bus *events.Bus) WhisperService {
	return &whisperService{
		repo:   repo,
		router: router,
		locks:  locks,
		bus:    bus,
	}
}

func (s *whisperService) Create(ctx context.Context, guildID, userID, threadID int64) (*models.Whisper, error) {
	if guildID <= 0 || userID <= 0 || threadID <= 0 {
		return nil, fmt.Errorf("guild, user and thread ids must be positive: %w", ErrValidation)
	}

	pending := events.NewTransactionalBus(s.bus)
	defer pending.Discard()

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return nil, err
	}

	whisper, err := s.repo.Create(ctx, guildID, userID, threadID)
	if err != nil {
		release()
		return nil, err
	}

	// Stash the event inside the critical section so its order matches the
	// commit order; it goes out only after the lock is released
	pending.Publish(events.WhisperCreatedEvent{
		GuildID:  guildID,
		UserID:   userID,
		ThreadID: threadID,
		Number:   whisper.Number,
	})
	release()

	log.WithFields(log.Fields{
		"guildID":  guildID,
		"userID":   userID,
		"threadID": threadID,
		"number":   whisper.Number,
	}).Info("Whisper created")

	result := s.router.Emit(ctx, guildID, models.CategoryWhisper, &LogEvent{
		Title:       "Whisper Created",
		Description: fmt.Sprintf("Whisper **#%d** opened", whisper.Number),
		Fields: []LogField{
			{Name: "Thread", Value: fmt.Sprintf("<#%d>", threadID), Inline: true},
			{Name: "Number", Value: fmt.Sprintf("#%d", whisper.Number), Inline: true},
		},
		TargetID: userID,
	})
	logEmitResult(guildID, models.CategoryWhisper, result)

	pending.Flush(ctx)
	return whisper, nil
}

func (s *whisperService) CloseByThread(ctx context.Context, guildID, threadID int64, closedByStaff bool) (*models.Whisper, error) {
	if guildID <= 0 || threadID <= 0 {
		return nil, fmt.Errorf("guild and thread ids must be positive: %w", ErrValidation)
	}

	pending := events.NewTransactionalBus(s.bus)
	defer pending.Discard()

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return nil, err
	}

	whisper, err := s.repo.Close(ctx, guildID, threadID, closedByStaff)
	if err != nil {
		release()
		return nil, err
	}

	if whisper == nil {
		// Distinguish a missing ticket from one that is already closed, so
		// the caller can answer "no such whisper" vs "already closed"
		existing, lookupErr := s.repo.GetByThread(ctx, guildID, threadID)
		release()
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, fmt.Errorf("no whisper for thread %d in guild %d: %w", threadID, guildID, ErrNotFound)
		}
		return nil, fmt.Errorf("whisper #%d is already closed: %w", existing.Number, ErrNotOpen)
	}
	pending.Publish(events.WhisperClosedEvent{
		GuildID:       guildID,
		UserID:        whisper.UserID,
		ThreadID:      threadID,
		Number:        whisper.Number,
		ClosedByStaff: closedByStaff,
	})
	release()

	log.WithFields(log.Fields{
		"guildID":       guildID,
		"threadID":      threadID,
		"number":        whisper.Number,
		"closedByStaff": closedByStaff,
	}).Info("Whisper closed")

	closedBy := "the user"
	if closedByStaff {
		closedBy = "staff"
	}
	result := s.router.Emit(ctx, guildID, models.CategoryWhisper, &LogEvent{
		Title:       "Whisper Closed",
		Description: fmt.Sprintf("Whisper **#%d** closed by %s", whisper.Number, closedBy),
		Fields: []LogField{
			{Name: "Thread", Value: fmt.Sprintf("<#%d>", threadID), Inline: true},
			{Name: "Number", Value: fmt.Sprintf("#%d", whisper.Number), Inline: true},
		},
		TargetID: whisper.UserID,
	})
	logEmitResult(guildID, models.CategoryWhisper, result)

	pending.Flush(ctx)
	return whisper, nil
}

func (s *whisperService) DeleteByThread(ctx context.Context, guildID, threadID int64) error {
	if guildID <= 0 || threadID <= 0 {
		return fmt.Errorf("guild and thread ids must be positive: %w", ErrValidation)
	}

	release, err := s.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}
	defer release()

	found, err := s.repo.Delete(ctx, guildID, threadID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no whisper for thread %d in guild %d: %w", threadID, guildID, ErrNotFound)
	}

	log.WithFields(log.Fields{
		"guildID":  guildID,
		"threadID": threadID,
	}).Info("Whisper deleted")

	return nil
}

func (s *whisperService) GetByNumber(ctx context.Context, guildID, number int64) (*models.Whisper, error) {
	whisper, err := s.repo.GetByNumber(ctx, guildID, number)
	if err != nil {
		return nil, err
	}
	if whisper == nil {
		return nil, fmt.Errorf("no whisper #%d in guild %d: %w", number, guildID, ErrNotFound)
	}
	return whisper, nil
}

func (s *whisperService) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Whisper, error) {
	return s.repo.GetOpenByUser(ctx, guildID, userID)
}

func (s *whisperService) ListOpen(ctx context.Context, guildID int64) ([]*models.Whisper, error) {
	return s.repo.ListOpen(ctx, guildID)
}

// logEmitResult records non-delivered whisper log emits; a missing log
// channel must never fail the lifecycle operation itself.
func logEmitResult(guildID int64, category models.LogCategory, result EmitResult) {
	if result.Delivered() {
		return
	}
	log.WithFields(log.Fields{
		"guildID":  guildID,
		"category": category,
		"reason":   result.Reason,
	}).Debug("Log event not delivered")
}
