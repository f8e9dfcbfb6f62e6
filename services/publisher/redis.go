package publisher

import (
	"context"
	"encoding/base64"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"
)

// SnapshotField is the stream entry field carrying the base64 snapshot
const SnapshotField = "b64_snapshot"

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if streamCount <= 0 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// StreamFor returns the stream a key is published to.
// If streamCount is 10, stream names are prefix:0 ~ prefix:9 and a key
// always lands on the same one so its snapshots stay ordered.
func (p *RedisPublisher) StreamFor(key string) string {
	shard := xxhash.Sum64String(key) % uint64(p.streamCount)
	return p.streamPrefix + ":" + strconv.FormatUint(shard, 10)
}

// Publish publishes a message to a Redis stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.StreamFor(key),
		Values: map[string]interface{}{
			"page_id":     key,
			SnapshotField: encodedMessage,
		},
	}).Err()
	if err != nil {
		return errors.NewPublisher("publisher", "failed to publish snapshot", err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	pattern := p.streamPrefix + ":*"
	streams, err := p.client.Keys(p.ctx, pattern).Result()
	if err != nil {
		return errors.NewPublisher("publisher", "failed to list streams", err)
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return errors.NewPublisher("publisher", "failed to trim stream "+stream, err)
		}
	}

	logger.ForPublisher().Debug().
		Int("streams", len(streams)).
		Int("max_length", p.streamMaxLength).
		Msg("Trimmed snapshot streams")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
