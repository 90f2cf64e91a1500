package service

import (
	"context"
	"sync"
)

// GuildLocks is the per-guild exclusive lock arena. Every operation that
// mutates guild-scoped state acquires the guild's lock for its whole
// read-modify-write sequence; operations on different guilds never contend.
type GuildLocks struct {
	locks sync.Map // guild id -> chan struct{} with capacity 1
}

// NewGuildLocks creates a new lock arena
func NewGuildLocks() *GuildLocks {
	return &GuildLocks{}
}

// Acquire takes the exclusive lock for a guild, blocking until it is free
// or ctx is cancelled. On success the returned release function must be
// called exactly once; on cancellation no lock is held and no state changed.
func (g *GuildLocks) Acquire(ctx context.Context, guildID int64) (release func(), err error) {
	v, _ := g.locks.LoadOrStore(guildID, make(chan struct{}, 1))
	ch := v.(chan struct{})

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
