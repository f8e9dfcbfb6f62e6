package publisher

// Publisher represents a service for publishing page snapshots
type Publisher interface {
	// Publish publishes a message for the given page key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
