package election

import (
	"context"
	"errors"
	"time"

	"election-service/internal/candidate"
	"election-service/internal/db"
	"election-service/internal/metrics"
	"election-service/internal/voter"

	"github.com/uptrace/bun"
)

// TransitionFunc mutates the locked election in place. It reports whether
// every voter's has_voted flag must be cleared in the same transaction.
type TransitionFunc func(e *Election) (resetVoters bool, err error)

type Repository interface {
	Create(ctx context.Context, election *Election) error
	GetAll(ctx context.Context) ([]Election, error)
	GetByID(ctx context.Context, id int) (*Election, error)
	GetActive(ctx context.Context) (*Election, error)
	Update(ctx context.Context, election *Election) error
	Transition(ctx context.Context, id int, apply TransitionFunc) (*Election, error)
	Delete(ctx context.Context, id int) error

	Candidates(ctx context.Context, electionID int) ([]candidate.Candidate, error)
	LinkCandidate(ctx context.Context, electionID, candidateID int) error
	UnlinkCandidate(ctx context.Context, electionID, candidateID int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, election *Election) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(election).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "elections", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrElectionExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Election, error) {
	start := time.Now()
	var elections []Election
	err := r.db.NewSelect().Model(&elections).Order("created_at DESC", "id DESC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "elections", time.Since(start), err)

	return elections, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Election, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetActive(ctx context.Context) (*Election, error) {
	election, err := r.getOne(ctx, "status = ?", StatusActive)
	if errors.Is(err, ErrElectionNotFound) {
		return nil, ErrNoActiveElection
	}
	return election, err
}

func (r *repository) getOne(ctx context.Context, where string, arg interface{}) (*Election, error) {
	start := time.Now()
	election := new(Election)
	err := r.db.NewSelect().Model(election).Where(where, arg).Limit(1).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "elections", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrElectionNotFound
		}
		return nil, err
	}
	return election, nil
}

// Update only touches pending elections; anything else reports
// ErrElectionLocked (or not found when the id is unknown).
func (r *repository) Update(ctx context.Context, election *Election) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(election).
		Column("title", "description", "start_at", "end_at").
		Set("updated_at = current_timestamp").
		WherePK().
		Where("status = ?", StatusPending).
		Returning("*").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "elections", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, election.ID); err != nil {
			return err
		}
		return ErrElectionLocked
	}
	return nil
}

func (r *repository) Transition(ctx context.Context, id int, apply TransitionFunc) (*Election, error) {
	start := time.Now()
	election := new(Election)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(election).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			if db.IsNoRows(err) {
				return ErrElectionNotFound
			}
			return err
		}

		resetVoters, err := apply(election)
		if err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model(election).
			Column("status").
			Set("updated_at = current_timestamp").
			WherePK().
			Returning("*").
			Exec(ctx); err != nil {
			return err
		}

		if resetVoters {
			_, err := tx.NewUpdate().
				Model((*voter.Voter)(nil)).
				Set("has_voted = FALSE").
				Set("updated_at = current_timestamp").
				Where("has_voted = TRUE").
				Exec(ctx)
			return err
		}
		return nil
	})
	r.metrics.Database.RecordTx(ctx, "election_transition", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return election, nil
}

// Delete removes the election with its votes and ballot links. Active
// elections are refused.
func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		election := new(Election)
		if err := tx.NewSelect().Model(election).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
			if db.IsNoRows(err) {
				return ErrElectionNotFound
			}
			return err
		}
		if election.IsActive() {
			return ErrElectionActive
		}

		if _, err := tx.NewDelete().TableExpr("votes").Where("election_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*ElectionCandidate)(nil)).Where("election_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model(election).WherePK().Exec(ctx)
		return err
	})
	r.metrics.Database.RecordTx(ctx, "election_delete", time.Since(start), err)

	return err
}

func (r *repository) Candidates(ctx context.Context, electionID int) ([]candidate.Candidate, error) {
	start := time.Now()
	var candidates []candidate.Candidate
	err := r.db.NewSelect().
		Model(&candidates).
		Join("JOIN election_candidates AS ec ON ec.candidate_id = c.id").
		Where("ec.election_id = ?", electionID).
		Order("c.position_id ASC", "c.id ASC").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "election_candidates", time.Since(start), err)

	return candidates, err
}

func (r *repository) LinkCandidate(ctx context.Context, electionID, candidateID int) error {
	start := time.Now()
	link := &ElectionCandidate{ElectionID: electionID, CandidateID: candidateID}
	_, err := r.db.NewInsert().Model(link).Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "election_candidates", time.Since(start), err)

	switch db.Classify(err) {
	case db.KindUnique:
		return ErrCandidateAlreadyLinked
	case db.KindForeignKey:
		return ErrUnknownCandidate
	}
	return err
}

func (r *repository) UnlinkCandidate(ctx context.Context, electionID, candidateID int) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*ElectionCandidate)(nil)).
		Where("election_id = ?", electionID).
		Where("candidate_id = ?", candidateID).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "election_candidates", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCandidateNotLinked
	}
	return nil
}
