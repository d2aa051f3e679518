// Package activity publishes note activity events to per-tenant Redis streams.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notedesk/notedesk/internal/metrics"
)

const (
	// StreamPrefix is followed by the tenant id.
	StreamPrefix = "stream:activity:"

	// MaxStreamLen is the approximate max length of each stream.
	MaxStreamLen = 10000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Event types.
const (
	NoteCreated = "note.created"
	NoteUpdated = "note.updated"
	NoteDeleted = "note.deleted"
)

// Event is one entry of a tenant activity stream.
type Event struct {
	Type     string `json:"type"`
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	NoteID   string `json:"note_id"`
	At       int64  `json:"t"` // Unix milliseconds
}

// Validate checks the event is complete.
func (e Event) Validate() error {
	switch e.Type {
	case NoteCreated, NoteUpdated, NoteDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.TenantID == "" {
		return errors.New("tenant_id is required")
	}
	if e.UserID == "" {
		return errors.New("user_id is required")
	}
	if e.NoteID == "" {
		return errors.New("note_id is required")
	}
	if e.At <= 0 {
		return errors.New("t must be set")
	}
	return nil
}

// StreamKey returns the stream of a tenant.
func StreamKey(tenantID string) string {
	return StreamPrefix + tenantID
}

// Publisher appends events to tenant streams.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new activity publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "activity.publisher"),
		metrics: recorder,
	}
}

// Publish appends an event to its tenant stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	if err := event.Validate(); err != nil {
		return "", fmt.Errorf("invalid event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(event.TenantID),
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"payload": string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishAsync publishes without blocking the caller. Failures are logged
// and counted, never returned.
func (p *Publisher) PublishAsync(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish activity event",
				"type", event.Type,
				"tenant_id", event.TenantID,
				"error", err,
			)
			p.metrics.IncActivityPublished(metrics.PublishDropped)
			return
		}

		p.logger.Debug("activity event published",
			"type", event.Type,
			"tenant_id", event.TenantID,
			"stream_id", streamID,
		)
		p.metrics.IncActivityPublished(metrics.PublishSuccess)
	}()
}
