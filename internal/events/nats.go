package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// envelope is the wire shape: the event payload tagged with its kind and
// publication time.
type envelope struct {
	Type       string `json:"type"`
	OccurredAt string `json:"occurredAt"`
	Data       Event  `json:"data"`
}

// NATSPublisher ships events to a JetStream stream.
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NewNATSPublisher connects to the broker and ensures the stream exists
// with the configured subject bound to it.
func NewNATSPublisher(url, stream, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to init jetstream: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", stream, err)
	}

	return &NATSPublisher{nc: nc, js: js, subject: subject}, nil
}

// Publish ships one event. The context bounds the JetStream ack wait.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(envelope{
		Type:       event.Kind(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Data:       event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Kind(), err)
	}

	if _, err := p.js.Publish(p.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Kind(), err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	p.nc.Close()
}
