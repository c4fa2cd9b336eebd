// Package audit publishes memo access events to Kafka. The gateway stores
// nothing itself; the audit topic is the only durable trace that a preview
// was served.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Event is one memo access. Timestamp is filled on publish when zero.
type Event struct {
	IntakeID  string    `json:"intake_id"`
	Route     string    `json:"route"`
	Status    string    `json:"status,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the sink handlers emit to. Publish must not block the
// request path; failures are logged, never surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close()
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
func (Noop) Close()                         {}

func encode(event Event) ([]byte, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return json.Marshal(event)
}
