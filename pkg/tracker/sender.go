package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/tracking"
)

// Sender delivers a snapshot to the collection endpoint.
type Sender interface {
	Send(snapshot *tracking.Snapshot) error
}

// HTTPSender posts snapshots as JSON to the analytics ingest endpoint.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSender creates a sender for the given ingest URL.
func NewHTTPSender(endpoint string) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSender) Send(snapshot *tracking.Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("snapshot rejected: %s", resp.Status)
	}
	return nil
}
