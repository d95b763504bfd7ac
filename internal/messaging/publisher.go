// Package messaging publishes vote and election events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/events"

	"github.com/nats-io/nats.go"
)

type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewPublisher(url string, subject string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("election-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &Publisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// Publish sends the event on <subject>.<type>, e.g. elections.events.vote.cast,
// so subscribers can filter with wildcards.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(p.subject + "." + event.Type)
	msg.Data = data
	msg.Header.Set("Event-Id", event.ID)
	msg.Header.Set("Election-Key", event.Key())

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}

	p.logger.DebugContext(ctx, "event sent to NATS", "subject", msg.Subject, "type", event.Type)
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
