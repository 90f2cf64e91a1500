package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jellydator/ttlcache/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"onwhisper/events"
	"onwhisper/models"
)

// configCache implements the ConfigCache interface. Guild snapshots (raw
// key -> stored string) are cached without expiry and evicted explicitly on
// writes and tenant reset; typing happens at read time against the declared
// type table.
type configCache struct {
	repo      GuildSettingRepository
	locks     *GuildLocks
	bus       *events.Bus
	snapshots *ttlcache.Cache[int64, map[string]string]
}

// NewConfigCache creates a new per-guild configuration cache
func NewConfigCache(repo GuildSettingRepository, locks *GuildLocks, bus *events.Bus) ConfigCache {
	return &configCache{
		repo:      repo,
		locks:     locks,
		bus:       bus,
		snapshots: ttlcache.New[int64, map[string]string](),
	}
}

// snapshot returns the guild's raw settings, loading them from the store
// under the guild lock on a cache miss so the load cannot interleave with a
// concurrent write on the same guild.
func (c *configCache) snapshot(ctx context.Context, guildID int64) (map[string]string, error) {
	if item := c.snapshots.Get(guildID); item != nil {
		return item.Value(), nil
	}

	release, err := c.locks.Acquire(ctx, guildID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another task may have loaded it while we waited for the lock
	if item := c.snapshots.Get(guildID); item != nil {
		return item.Value(), nil
	}

	stored, err := c.repo.GetAll(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for guild %d: %w", guildID, err)
	}

	c.snapshots.Set(guildID, stored, ttlcache.NoTTL)
	return stored, nil
}

// resolve returns the typed value for one declared key, falling back to the
// compiled-in default when the key was never set or the stored value does
// not parse as its declared type.
func (c *configCache) resolve(guildID int64, snap map[string]string, key string, def models.SettingDef) models.SettingValue {
	raw, present := snap[key]
	if !present {
		return def.Default
	}

	value, err := coerce(def.Type, raw)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"key":     key,
			"value":   raw,
		}).Warn("Stored setting does not parse as its declared type, using default")
		return def.Default
	}

	return value
}

func (c *configCache) get(ctx context.Context, guildID int64, key string, want models.SettingType) (models.SettingValue, error) {
	def, ok := models.SettingDefs[key]
	if !ok || def.Type != want {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"key":     key,
		}).Warn("Config read for undeclared key or mismatched type")
		return models.SettingValue{Type: want}, nil
	}

	snap, err := c.snapshot(ctx, guildID)
	if err != nil {
		// Fail closed: report the store error but hand back the default so
		// callers that ignore it still behave predictably
		return def.Default, err
	}

	return c.resolve(guildID, snap, key, def), nil
}

func (c *configCache) GetBool(ctx context.Context, guildID int64, key string) (bool, error) {
	v, err := c.get(ctx, guildID, key, models.SettingBool)
	return v.Bool, err
}

func (c *configCache) GetInt(ctx context.Context, guildID int64, key string) (int64, error) {
	v, err := c.get(ctx, guildID, key, models.SettingInt)
	return v.Int, err
}

func (c *configCache) GetString(ctx context.Context, guildID int64, key string) (string, error) {
	v, err := c.get(ctx, guildID, key, models.SettingString)
	return v.Str, err
}

func (c *configCache) GetID(ctx context.Context, guildID int64, key string) (int64, error) {
	v, err := c.get(ctx, guildID, key, models.SettingID)
	return v.ID, err
}

func (c *configCache) GetAll(ctx context.Context, guildID int64) (map[string]models.SettingValue, error) {
	snap, err := c.snapshot(ctx, guildID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]models.SettingValue, len(models.SettingDefs))
	for key, def := range models.SettingDefs {
		resolved[key] = c.resolve(guildID, snap, key, def)
	}

	return resolved, nil
}

func (c *configCache) Set(ctx context.Context, guildID int64, key string, value models.SettingValue) error {
	def, ok := models.SettingDefs[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, ErrValidation)
	}
	if value.Type != def.Type {
		return fmt.Errorf("setting %q expects a different type: %w", key, ErrValidation)
	}

	pending := events.NewTransactionalBus(c.bus)
	defer pending.Discard()

	release, err := c.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}

	// Evict before the durable write: if the caller is cancelled between the
	// write and its reply, the next read reloads from the store instead of
	// serving the superseded snapshot
	c.snapshots.Delete(guildID)

	if err := c.repo.Set(ctx, guildID, key, value.Stored()); err != nil {
		release()
		return err
	}
	pending.Publish(events.ConfigChangedEvent{GuildID: guildID, Key: key})
	release()

	log.WithFields(log.Fields{
		"guildID": guildID,
		"key":     key,
		"value":   value.Stored(),
	}).Info("Guild setting updated")

	pending.Flush(ctx)
	return nil
}

func (c *configCache) SetFromString(ctx context.Context, guildID int64, key, raw string) error {
	def, ok := models.SettingDefs[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, ErrValidation)
	}

	value, err := coerce(def.Type, raw)
	if err != nil {
		return fmt.Errorf("cannot parse %q for setting %q: %w", raw, key, ErrValidation)
	}

	return c.Set(ctx, guildID, key, value)
}

func (c *configCache) Remove(ctx context.Context, guildID int64, key string) error {
	if _, ok := models.SettingDefs[key]; !ok {
		return fmt.Errorf("unknown setting %q: %w", key, ErrValidation)
	}

	pending := events.NewTransactionalBus(c.bus)
	defer pending.Discard()

	release, err := c.locks.Acquire(ctx, guildID)
	if err != nil {
		return err
	}

	c.snapshots.Delete(guildID)

	found, err := c.repo.Remove(ctx, guildID, key)
	if err != nil {
		release()
		return err
	}
	if !found {
		release()
		return fmt.Errorf("setting %q is not set for guild %d: %w", key, guildID, ErrNotFound)
	}
	pending.Publish(events.ConfigChangedEvent{GuildID: guildID, Key: key, Removed: true})
	release()

	pending.Flush(ctx)
	return nil
}

func (c *configCache) Invalidate(guildID int64) {
	c.snapshots.Delete(guildID)
}

// coerce converts a stored or user-supplied string to a typed value.
// Identifier values accept channel and role mention forms as users paste
// them ("<#123>", "<@&123>").
func coerce(t models.SettingType, raw string) (models.SettingValue, error) {
	switch t {
	case models.SettingBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "yes", "on", "enabled":
			return models.BoolValue(true), nil
		case "no", "off", "disabled":
			return models.BoolValue(false), nil
		}
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return models.SettingValue{}, err
		}
		return models.BoolValue(b), nil

	case models.SettingInt:
		n, err := cast.ToInt64E(strings.TrimSpace(raw))
		if err != nil {
			return models.SettingValue{}, err
		}
		return models.IntValue(n), nil

	case models.SettingID:
		s := strings.TrimSpace(raw)
		s = strings.TrimSuffix(s, ">")
		s = strings.TrimPrefix(s, "<#")
		s = strings.TrimPrefix(s, "<@&")
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 0 {
			return models.SettingValue{}, fmt.Errorf("invalid identifier %q", raw)
		}
		return models.IDValue(id), nil

	default:
		return models.StringValue(raw), nil
	}
}
