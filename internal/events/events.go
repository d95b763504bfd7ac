package events

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"election-service/internal/metrics"
)

const (
	TypeVoteCast              = "vote.cast"
	TypeVoteBatchCast         = "vote.batch_cast"
	TypeVoteReset             = "vote.reset"
	TypeElectionReset         = "election.reset"
	TypeElectionStatusChanged = "election.status_changed"
)

// Event is the envelope published to the broker. Data carries the
// type-specific body.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	ElectionID int       `json:"electionId"`
	VoterID    int       `json:"voterId,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// Key groups events of one election on the same partition.
func (e Event) Key() string {
	return "election-" + strconv.Itoa(e.ElectionID)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noop struct{}

// Noop discards every event. Used when events.driver is "none".
func Noop() Publisher { return noop{} }

func (noop) Publish(context.Context, Event) error { return nil }
func (noop) Close() error                         { return nil }

// Emitter publishes after the fact: a failed publish is counted and logged
// but never reported to the caller, whose transaction has already committed.
type Emitter struct {
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewEmitter(publisher Publisher, m *metrics.Metrics, logger *slog.Logger, newID func() string) *Emitter {
	if publisher == nil {
		publisher = Noop()
	}
	return &Emitter{publisher: publisher, metrics: m, logger: logger, now: time.Now, newID: newID}
}

func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil {
		return
	}
	if event.ID == "" && e.newID != nil {
		event.ID = e.newID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}

	err := e.publisher.Publish(ctx, event)
	e.metrics.RecordEventPublished(ctx, event.Type, err)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to publish event",
			"type", event.Type,
			"election_id", event.ElectionID,
			"error", err,
		)
	}
}
