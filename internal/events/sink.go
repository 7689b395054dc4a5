// Package events delivers state-change notifications to external subscribers.
package events

import (
	"context"
	"log/slog"

	"github.com/easeaico/emotion-engine/internal/types"
)

// Topics published by the engine.
const (
	TopicStateChanged = "emotion.state_changed"
	TopicNormalized   = "emotion.normalized"
)

// Sink receives engine events. Publish is fire-and-forget from the engine's
// point of view: errors are logged by the caller and never propagated.
type Sink interface {
	Publish(ctx context.Context, topic string, event types.StateChangeEvent) error
}

// LogSink writes events to the structured log. It is the default sink when no
// external dispatcher is wired in.
type LogSink struct{}

// Publish logs the event.
func (LogSink) Publish(ctx context.Context, topic string, event types.StateChangeEvent) error {
	slog.Info("emotion event",
		"topic", topic,
		"character_id", event.CharacterID,
		"from", event.OldState.Primary,
		"to", event.NewState.Primary,
		"intensity", event.NewState.Intensity,
		"source", event.Source)
	return nil
}

// Envelope pairs a topic with its event for channel delivery.
type Envelope struct {
	Topic string
	Event types.StateChangeEvent
}

// ChannelSink forwards events to an outbound channel so an external dispatcher
// can consume them. Delivery is non-blocking; a full channel drops the event.
type ChannelSink struct {
	ch chan Envelope
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{ch: make(chan Envelope, buffer)}
}

// Events returns the outbound channel.
func (s *ChannelSink) Events() <-chan Envelope {
	return s.ch
}

// Publish enqueues the event without blocking.
func (s *ChannelSink) Publish(ctx context.Context, topic string, event types.StateChangeEvent) error {
	select {
	case s.ch <- Envelope{Topic: topic, Event: event}:
		return nil
	default:
		slog.Warn("event channel full, dropping event", "topic", topic, "character_id", event.CharacterID)
		return nil
	}
}
