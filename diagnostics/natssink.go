package diagnostics

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsSink publishes diagnostic events to a NATS subject, grounded on
// the teacher pack's queue.Producer publish-by-marshal idiom
// (iluha78-FD/internal/queue/producer.go), generalized from JetStream
// work-queue publish to a plain core-NATS publish since diagnostic
// events are fire-and-forget telemetry, not a durable work queue.
type NatsSink struct {
	nc      *nats.Conn
	subject string
}

// NewNatsSink connects to natsURL and returns a Sink publishing to
// subject. The connection retries indefinitely on failure, matching the
// teacher pack's reconnect posture.
func NewNatsSink(natsURL, subject string) (*NatsSink, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: connect to nats: %w", err)
	}
	return &NatsSink{nc: nc, subject: subject}, nil
}

// Emit marshals and publishes ev. Marshal or publish failures are
// swallowed (diagnostics are best-effort and must never affect the
// frame pipeline), matching the mid-session error posture of §7.
func (s *NatsSink) Emit(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = s.nc.Publish(s.subject, payload)
}

// Close closes the underlying NATS connection (Close, not Drain).
func (s *NatsSink) Close() {
	s.nc.Close()
}
