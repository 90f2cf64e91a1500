package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"onwhisper/models"
)

// logRouter implements the LogRouter interface. It is a pure function of
// the configuration cache at emit time: no queue, no retries, no state.
type logRouter struct {
	config   ConfigCache
	notifier Notifier
}

// NewLogRouter creates a new logging router
func NewLogRouter(config ConfigCache, notifier Notifier) LogRouter {
	return &logRouter{
		config:   config,
		notifier: notifier,
	}
}

func (r *logRouter) Emit(ctx context.Context, guildID int64, category models.LogCategory, event *LogEvent) EmitResult {
	if !category.Valid() {
		return EmitResult{Status: EmitFailed, Reason: "unknown category: " + string(category)}
	}

	masterEnabled, err := r.config.GetBool(ctx, guildID, models.KeyLoggingEnabled)
	if err != nil {
		return EmitResult{Status: EmitFailed, Reason: err.Error()}
	}
	if !masterEnabled {
		return EmitResult{Status: EmitSuppressed, Reason: ReasonMasterDisabled}
	}

	categoryEnabled, err := r.config.GetBool(ctx, guildID, category.EnabledKey())
	if err != nil {
		return EmitResult{Status: EmitFailed, Reason: err.Error()}
	}
	if !categoryEnabled {
		return EmitResult{Status: EmitSuppressed, Reason: ReasonCategoryDisabled}
	}

	candidates, err := r.destinations(ctx, guildID, category)
	if err != nil {
		return EmitResult{Status: EmitFailed, Reason: err.Error()}
	}
	if len(candidates) == 0 {
		return EmitResult{Status: EmitSuppressed, Reason: ReasonNoDestination}
	}

	// First resolvable candidate wins; a configured-but-dead channel falls
	// through to the next one. An administrator has to fix the
	// configuration: the router never retries and never disables a category.
	for _, channelID := range candidates {
		if err := r.notifier.ResolveChannel(guildID, channelID); err != nil {
			log.WithFields(log.Fields{
				"guildID":   guildID,
				"category":  category,
				"channelID": channelID,
			}).Warn("Configured log channel is not resolvable")
			continue
		}

		if err := r.notifier.Send(ctx, guildID, channelID, category, event); err != nil {
			return EmitResult{Status: EmitFailed, Reason: err.Error(), ChannelID: channelID}
		}

		return EmitResult{Status: EmitDelivered, ChannelID: channelID}
	}

	return EmitResult{Status: EmitFailed, Reason: ReasonUnresolvable}
}

// destinations returns the configured candidate channels in preference
// order: the category's own channel, then the guild's fallback log channel.
func (r *logRouter) destinations(ctx context.Context, guildID int64, category models.LogCategory) ([]int64, error) {
	var candidates []int64

	channelID, err := r.config.GetID(ctx, guildID, category.ChannelKey())
	if err != nil {
		return nil, err
	}
	if channelID != 0 {
		candidates = append(candidates, channelID)
	}

	fallbackID, err := r.config.GetID(ctx, guildID, models.KeyLogChannel)
	if err != nil {
		return nil, err
	}
	if fallbackID != 0 && fallbackID != channelID {
		candidates = append(candidates, fallbackID)
	}

	return candidates, nil
}
