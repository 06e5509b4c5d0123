package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mikelzubi/mimapa/internal/core/domain"
)

// Subjects fan out per visited owner so the live feed can filter
// server-side. Emails contain dots, which NATS treats as token
// separators, so they are flattened into one token.
var subjectEncoder = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// VisitSubject returns the subject a visit to owner is published on.
func VisitSubject(owner string) string {
	return "mapa.visit." + subjectEncoder.Replace(owner)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the
// visits stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "VISITS",
		Subjects:  []string{"mapa.visit.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishVisit emits one event per recorded visit. The credential
// token never leaves the ledger.
func (p *Publisher) PublishVisit(ctx context.Context, v *domain.Visit) error {
	data, err := json.Marshal(struct {
		ID        string    `json:"id"`
		Visited   string    `json:"visited"`
		Visitor   string    `json:"visitor"`
		Timestamp time.Time `json:"timestamp"`
	}{v.ID, v.Visited, v.Visitor, v.Timestamp})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(VisitSubject(v.Visited), data)
	return err
}

// Ping reports connection health, used by the readiness probe.
func (p *Publisher) Ping() error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats disconnected")
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
