package publisher

import (
	"encoding/json"
	"time"

	"sjsage522/pricecontext/pkg/errors"
)

// PageSnapshot is the annotated state of one page after a pass
type PageSnapshot struct {
	PageID      string    `json:"page_id"`
	URL         string    `json:"url"`
	Hostname    string    `json:"hostname"`
	Annotations int       `json:"annotations"`
	HTML        string    `json:"html"`
	RenderedAt  time.Time `json:"rendered_at"`
}

// Encode serializes the snapshot for Publish
func (s PageSnapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.NewPublisher("publisher", "failed to encode page snapshot", err)
	}
	return data, nil
}

// DecodeSnapshot parses a message produced by Encode
func DecodeSnapshot(data []byte) (PageSnapshot, error) {
	var s PageSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return PageSnapshot{}, errors.NewParsing("publisher", "malformed page snapshot", err)
	}
	return s, nil
}
