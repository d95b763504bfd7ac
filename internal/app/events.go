package app

import (
	"fmt"
	"log/slog"

	"election-service/internal/config"
	"election-service/internal/events"
	"election-service/internal/kafka"
	"election-service/internal/messaging"
)

// newPublisher picks the event broker from events.driver. A broker that
// can't be reached at startup degrades to the no-op publisher so votes are
// never blocked by messaging.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	pub, err := dialPublisher(cfg, logger)
	if err != nil {
		logger.Warn("event publisher unavailable, events will be dropped", "driver", cfg.Driver, "error", err)
		return events.Noop()
	}
	return pub
}

func dialPublisher(cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		return events.Noop(), nil
	case "nats":
		return messaging.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
	case "kafka":
		return kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
}
