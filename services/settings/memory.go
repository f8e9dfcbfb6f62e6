package settings

import (
	"context"
	"encoding/json"
	"sync"

	"sjsage522/pricecontext/logger"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu          sync.Mutex
	values      map[string][]byte
	subscribers map[chan Change]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:      make(map[string][]byte),
		subscribers: make(map[chan Change]struct{}),
	}
}

func (m *MemoryStore) get(namespace, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.values[namespace+":"+key]
	return data, ok
}

func (m *MemoryStore) set(namespace, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[namespace+":"+key] = data

	change := Change{Namespace: namespace, Keys: []string{key}}
	for ch := range m.subscribers {
		select {
		case ch <- change:
		default:
			logger.ForSettings().Warn().Str("key", key).Msg("Dropping change notification for slow subscriber")
		}
	}
	return nil
}

// Enabled implements Store
func (m *MemoryStore) Enabled(ctx context.Context) (bool, bool, error) {
	data, ok := m.get(NamespaceLocal, KeyEnabled)
	if !ok {
		return false, false, nil
	}
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err != nil {
		return false, false, nil
	}
	return enabled, true, nil
}

// Language implements Store
func (m *MemoryStore) Language(ctx context.Context) (string, bool, error) {
	data, ok := m.get(NamespaceLocal, KeyLanguage)
	if !ok {
		return "", false, nil
	}
	var language string
	if err := json.Unmarshal(data, &language); err != nil {
		return "", false, nil
	}
	return language, true, nil
}

// Sync implements Store
func (m *MemoryStore) Sync(ctx context.Context) (RawSettings, error) {
	values := make(map[string][]byte)
	for _, key := range SyncKeys {
		if data, ok := m.get(NamespaceSync, key); ok {
			values[key] = data
		}
	}
	return decodeSync(values), nil
}

// SetEnabled implements Store
func (m *MemoryStore) SetEnabled(ctx context.Context, enabled bool) error {
	return m.set(NamespaceLocal, KeyEnabled, enabled)
}

// SetLanguage implements Store
func (m *MemoryStore) SetLanguage(ctx context.Context, language string) error {
	return m.set(NamespaceLocal, KeyLanguage, language)
}

// SetSalary implements Store
func (m *MemoryStore) SetSalary(ctx context.Context, salary Salary) error {
	return m.set(NamespaceSync, KeySalary, salary)
}

// SetWorkHoursPerDay implements Store
func (m *MemoryStore) SetWorkHoursPerDay(ctx context.Context, hours float64) error {
	return m.set(NamespaceSync, KeyWorkHoursPerDay, hours)
}

// SetBaseItem implements Store
func (m *MemoryStore) SetBaseItem(ctx context.Context, item BaseItem) error {
	return m.set(NamespaceSync, KeyBaseItem, item)
}

// Subscribe implements Store
func (m *MemoryStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 16)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subscribers, ch)
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Close implements Store
func (m *MemoryStore) Close() error {
	return nil
}
