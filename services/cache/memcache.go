package cache

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"sjsage522/pricecontext/logger"
	"sjsage522/pricecontext/pkg/errors"
)

// maxKeyLength is the memcached protocol limit
const maxKeyLength = 250

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a value from memcache. A missing key yields ErrMiss.
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(normalizeKey(key))
	if err != nil {
		if stderrors.Is(err, memcache.ErrCacheMiss) {
			return nil, ErrMiss
		}
		logger.ForCache().Debug().Err(err).Str("key", key).Msg("Cache read failed")
		return nil, errors.NewCache("memcache", "get "+key, err)
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        normalizeKey(key),
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
	if err != nil {
		return errors.NewCache("memcache", "set "+key, err)
	}
	return nil
}

// Delete removes a value from memcache. Deleting a missing key is not an error.
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(normalizeKey(key))
	if err != nil && !stderrors.Is(err, memcache.ErrCacheMiss) {
		return errors.NewCache("memcache", "delete "+key, err)
	}
	return nil
}

// normalizeKey replaces characters memcached rejects and bounds the length
func normalizeKey(key string) string {
	key = strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return '_'
		}
		return r
	}, key)
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	return key
}
