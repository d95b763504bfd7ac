package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	Runtime  *RuntimeMetrics

	votesRecorded       metric.Int64Counter
	votesRejected       metric.Int64Counter
	batchesRejected     metric.Int64Counter
	electionTransitions metric.Int64Counter
	resultsViewed       metric.Int64Counter
	eventsPublished     metric.Int64Counter
	loginAttempts       metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Runtime, err = NewRuntimeMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.votesRecorded, err = meter.Int64Counter(
		"election_service.votes.recorded",
		metric.WithDescription("Total number of committed vote rows"),
		metric.WithUnit("{vote}"),
	)
	if err != nil {
		return nil, err
	}

	m.votesRejected, err = meter.Int64Counter(
		"election_service.votes.rejected",
		metric.WithDescription("Vote submissions rejected by validation, by reason"),
		metric.WithUnit("{vote}"),
	)
	if err != nil {
		return nil, err
	}

	m.batchesRejected, err = meter.Int64Counter(
		"election_service.batches.rejected",
		metric.WithDescription("Batch ballots rolled back"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, err
	}

	m.electionTransitions, err = meter.Int64Counter(
		"election_service.elections.transitions",
		metric.WithDescription("Election status transitions, by target status"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	m.resultsViewed, err = meter.Int64Counter(
		"election_service.results.viewed",
		metric.WithDescription("Number of tally requests"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.eventsPublished, err = meter.Int64Counter(
		"election_service.events.published",
		metric.WithDescription("Domain events handed to the broker, by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginAttempts, err = meter.Int64Counter(
		"election_service.auth.logins",
		metric.WithDescription("Login attempts, by role and outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordVotes(ctx context.Context, n int) {
	if m != nil && m.votesRecorded != nil {
		m.votesRecorded.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordVoteRejected(ctx context.Context, reason string) {
	if m != nil && m.votesRejected != nil {
		m.votesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordBatchRejected(ctx context.Context) {
	if m != nil && m.batchesRejected != nil {
		m.batchesRejected.Add(ctx, 1)
	}
}

func (m *Metrics) RecordElectionTransition(ctx context.Context, status string) {
	if m != nil && m.electionTransitions != nil {
		m.electionTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func (m *Metrics) RecordResultsViewed(ctx context.Context) {
	if m != nil && m.resultsViewed != nil {
		m.resultsViewed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEventPublished(ctx context.Context, eventType string, err error) {
	if m == nil || m.eventsPublished == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, ok bool) {
	if m == nil || m.loginAttempts == nil {
		return
	}
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.Bool("success", ok),
	))
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
