// Package stocksync publishes committed stock availability to the commerce
// platform through a Redis stream.
package stocksync

import (
	"context"
	"encoding/json"
	"fmt"

	appinv "github.com/erp/stockcore/internal/application/inventory"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultStream is the stream key used when none is configured
const DefaultStream = "stockcore:availability"

// StreamAdder is the part of the Redis client the publisher needs
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher appends one stream entry per availability update. Consumers
// read the entries with XREAD or a consumer group; the item ID and version
// let them drop stale updates.
type StreamPublisher struct {
	client StreamAdder
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewStreamPublisher creates a publisher. maxLen > 0 trims the stream
// approximately to that many entries.
func NewStreamPublisher(client StreamAdder, stream string, maxLen int64, logger *zap.Logger) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen, logger: logger.Named("stream_publisher")}
}

// PublishAvailability appends update to the stream
func (p *StreamPublisher) PublishAvailability(ctx context.Context, update appinv.AvailabilityUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode availability update: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id": update.EventID.String(),
			"item_id":  update.ItemID.String(),
			"version":  update.Version,
			"payload":  string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	p.logger.Debug("Availability published",
		zap.String("entry_id", id),
		zap.String("item_id", update.ItemID.String()),
		zap.String("available", update.Available.String()),
	)
	return nil
}

var _ appinv.StockSyncPublisher = (*StreamPublisher)(nil)
