package settings

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis keys and pub/sub.
// Values live under "<prefix>:<namespace>:<key>" as JSON, and every write is
// announced on "<prefix>:changes".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed settings store
func NewRedisStore(addr string, db int, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(namespace, key string) string {
	return s.prefix + ":" + namespace + ":" + key
}

func (s *RedisStore) channel() string {
	return s.prefix + ":changes"
}

func (s *RedisStore) get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(namespace, key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStorage("settings", "failed to read "+key, err)
	}
	return data, true, nil
}

func (s *RedisStore) set(ctx context.Context, namespace, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewParsing("settings", "failed to encode "+key, err)
	}

	if err := s.client.Set(ctx, s.key(namespace, key), data, 0).Err(); err != nil {
		return errors.NewStorage("settings", "failed to write "+key, err)
	}

	change, err := json.Marshal(Change{Namespace: namespace, Keys: []string{key}})
	if err != nil {
		return errors.NewParsing("settings", "failed to encode change", err)
	}
	if err := s.client.Publish(ctx, s.channel(), change).Err(); err != nil {
		return errors.NewStorage("settings", "failed to announce change of "+key, err)
	}
	return nil
}

// Enabled implements Store
func (s *RedisStore) Enabled(ctx context.Context) (bool, bool, error) {
	data, found, err := s.get(ctx, NamespaceLocal, KeyEnabled)
	if err != nil || !found {
		return false, false, err
	}
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err != nil {
		logger.ForSettings().Warn().Err(err).Str("key", KeyEnabled).Msg("Ignoring malformed setting")
		return false, false, nil
	}
	return enabled, true, nil
}

// Language implements Store
func (s *RedisStore) Language(ctx context.Context) (string, bool, error) {
	data, found, err := s.get(ctx, NamespaceLocal, KeyLanguage)
	if err != nil || !found {
		return "", false, err
	}
	var language string
	if err := json.Unmarshal(data, &language); err != nil {
		logger.ForSettings().Warn().Err(err).Str("key", KeyLanguage).Msg("Ignoring malformed setting")
		return "", false, nil
	}
	return language, true, nil
}

// Sync implements Store
func (s *RedisStore) Sync(ctx context.Context) (RawSettings, error) {
	keys := make([]string, len(SyncKeys))
	for i, key := range SyncKeys {
		keys[i] = s.key(NamespaceSync, key)
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return RawSettings{}, errors.NewStorage("settings", "failed to read sync settings", err)
	}

	values := make(map[string][]byte)
	for i, result := range results {
		if str, ok := result.(string); ok {
			values[SyncKeys[i]] = []byte(str)
		}
	}
	return decodeSync(values), nil
}

// SetEnabled implements Store
func (s *RedisStore) SetEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, NamespaceLocal, KeyEnabled, enabled)
}

// SetLanguage implements Store
func (s *RedisStore) SetLanguage(ctx context.Context, language string) error {
	return s.set(ctx, NamespaceLocal, KeyLanguage, language)
}

// SetSalary implements Store
func (s *RedisStore) SetSalary(ctx context.Context, salary Salary) error {
	return s.set(ctx, NamespaceSync, KeySalary, salary)
}

// SetWorkHoursPerDay implements Store
func (s *RedisStore) SetWorkHoursPerDay(ctx context.Context, hours float64) error {
	return s.set(ctx, NamespaceSync, KeyWorkHoursPerDay, hours)
}

// SetBaseItem implements Store
func (s *RedisStore) SetBaseItem(ctx context.Context, item BaseItem) error {
	return s.set(ctx, NamespaceSync, KeyBaseItem, item)
}

// Subscribe implements Store
func (s *RedisStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	pubsub := s.client.Subscribe(ctx, s.channel())

	// Wait for the subscription to be confirmed before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, errors.NewStorage("settings", "failed to subscribe to changes", err)
	}

	out := make(chan Change, 16)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					logger.ForSettings().Warn().Err(err).Msg("Ignoring malformed change notification")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
