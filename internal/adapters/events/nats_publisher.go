package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher emits audit events onto a NATS subject so downstream
// consumers (reporting, notifications) can react without polling the
// audit table.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return p.conn.Publish(subject, data)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
