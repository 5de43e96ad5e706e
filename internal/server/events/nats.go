package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

type conn interface {
	Publish(subj string, data []byte) error
	IsConnected() bool
	Drain() error
}

// NatsPublisher publishes events as JSON on subjects prefixed with the
// configured namespace.
type NatsPublisher struct {
	nc     conn
	prefix string
}

// connect is a seam for testing nats.Connect.
var connect = func(url string, opts ...nats.Option) (conn, error) {
	return nats.Connect(url, opts...)
}

func NewNatsPublisher(url, prefix string) (*NatsPublisher, error) {
	nc, err := connect(url,
		nats.Name("gophsocial"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	subject := e.Subject
	if p.prefix != "" {
		subject = p.prefix + "." + subject
	}
	return p.nc.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() {
	_ = p.nc.Drain()
}
