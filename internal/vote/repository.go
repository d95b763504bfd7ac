package vote

import (
	"context"
	"fmt"
	"time"

	"election-service/internal/candidate"
	"election-service/internal/db"
	"election-service/internal/election"
	"election-service/internal/metrics"
	"election-service/internal/position"
	"election-service/internal/voter"

	"github.com/uptrace/bun"
)

type bunStore struct {
	db        *bun.DB
	metrics   *metrics.Metrics
	txTimeout time.Duration
}

// NewStore returns the Postgres-backed Store. txTimeout bounds every vote
// transaction including lock waits; zero means only the caller's context.
func NewStore(db *bun.DB, m *metrics.Metrics, txTimeout time.Duration) Store {
	return &bunStore{db: db, metrics: m, txTimeout: txTimeout}
}

func (s *bunStore) ActiveElection(ctx context.Context) (*election.Election, error) {
	start := time.Now()
	e := new(election.Election)
	err := s.db.NewSelect().Model(e).Where("status = ?", election.StatusActive).Limit(1).Scan(ctx)
	s.metrics.Database.RecordQuery(ctx, "select", "elections", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNoActiveElection
		}
		return nil, storageError(err)
	}
	return e, nil
}

func (s *bunStore) Election(ctx context.Context, id int) (*election.Election, error) {
	start := time.Now()
	e := new(election.Election)
	err := s.db.NewSelect().Model(e).Where("id = ?", id).Scan(ctx)
	s.metrics.Database.RecordQuery(ctx, "select", "elections", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, election.ErrElectionNotFound
		}
		return nil, storageError(err)
	}
	return e, nil
}

func (s *bunStore) VoterVotes(ctx context.Context, voterID, electionID int) ([]Vote, error) {
	start := time.Now()
	var votes []Vote
	err := s.db.NewSelect().
		Model(&votes).
		Where("voter_id = ?", voterID).
		Where("election_id = ?", electionID).
		Order("position_id ASC", "candidate_id ASC").
		Scan(ctx)
	s.metrics.Database.RecordQuery(ctx, "select", "votes", time.Since(start), err)

	return votes, storageError(err)
}

// Tally counts votes per candidate of the election. Candidates on the
// election's ballot appear even with zero votes.
func (s *bunStore) Tally(ctx context.Context, electionID int) ([]TallyRow, error) {
	start := time.Now()
	var rows []TallyRow
	err := s.db.NewRaw(`
		SELECT p.id AS position_id,
		       p.name AS position_name,
		       p.display_order,
		       p.vote_limit,
		       c.id AS candidate_id,
		       c.first_name || ' ' || c.last_name AS candidate_name,
		       COUNT(v.id) AS vote_count
		FROM candidates AS c
		JOIN positions AS p ON p.id = c.position_id
		LEFT JOIN votes AS v ON v.candidate_id = c.id AND v.election_id = ?0
		WHERE v.id IS NOT NULL
		   OR c.id IN (SELECT candidate_id FROM election_candidates WHERE election_id = ?0)
		GROUP BY p.id, p.name, p.display_order, p.vote_limit, c.id, c.first_name, c.last_name
		ORDER BY p.display_order ASC, p.id ASC, vote_count DESC, c.id ASC`,
		electionID,
	).Scan(ctx, &rows)
	s.metrics.Database.RecordQuery(ctx, "select", "votes", time.Since(start), err)

	return rows, storageError(err)
}

func (s *bunStore) InTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	start := time.Now()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &txStore{tx: tx, metrics: s.metrics})
	})
	s.metrics.Database.RecordTx(ctx, "vote", time.Since(start), err)

	return storageError(err)
}

type txStore struct {
	tx      bun.Tx
	metrics *metrics.Metrics
}

func (t *txStore) LockElection(ctx context.Context, id int) (*election.Election, error) {
	start := time.Now()
	e := new(election.Election)
	err := t.tx.NewSelect().Model(e).Where("id = ?", id).For("SHARE").Scan(ctx)
	t.metrics.Database.RecordQuery(ctx, "select_for_share", "elections", time.Since(start), err)

	if db.IsNoRows(err) {
		return nil, election.ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (t *txStore) LockVoter(ctx context.Context, id int) (*voter.Voter, error) {
	start := time.Now()
	v := new(voter.Voter)
	err := t.tx.NewSelect().Model(v).Where("id = ?", id).For("UPDATE").Scan(ctx)
	t.metrics.Database.RecordQuery(ctx, "select_for_update", "voters", time.Since(start), err)

	if db.IsNoRows(err) {
		return nil, voter.ErrVoterNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (t *txStore) Candidate(ctx context.Context, id int) (*candidate.Candidate, error) {
	start := time.Now()
	c := new(candidate.Candidate)
	err := t.tx.NewSelect().Model(c).Where("id = ?", id).Scan(ctx)
	t.metrics.Database.RecordQuery(ctx, "select", "candidates", time.Since(start), err)

	if db.IsNoRows(err) {
		return nil, candidate.ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (t *txStore) Position(ctx context.Context, id int) (*position.Position, error) {
	start := time.Now()
	p := new(position.Position)
	err := t.tx.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
	t.metrics.Database.RecordQuery(ctx, "select", "positions", time.Since(start), err)

	if db.IsNoRows(err) {
		return nil, position.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (t *txStore) CountPositionVotes(ctx context.Context, voterID, electionID, positionID int) (int, error) {
	start := time.Now()
	count, err := t.tx.NewSelect().
		Model((*Vote)(nil)).
		Where("voter_id = ?", voterID).
		Where("election_id = ?", electionID).
		Where("position_id = ?", positionID).
		Count(ctx)
	t.metrics.Database.RecordQuery(ctx, "count", "votes", time.Since(start), err)

	return count, err
}

func (t *txStore) HasCandidateVote(ctx context.Context, voterID, electionID, candidateID int) (bool, error) {
	start := time.Now()
	exists, err := t.tx.NewSelect().
		Model((*Vote)(nil)).
		Where("voter_id = ?", voterID).
		Where("election_id = ?", electionID).
		Where("candidate_id = ?", candidateID).
		Exists(ctx)
	t.metrics.Database.RecordQuery(ctx, "exists", "votes", time.Since(start), err)

	return exists, err
}

func (t *txStore) InsertVote(ctx context.Context, v *Vote) error {
	start := time.Now()
	_, err := t.tx.NewInsert().Model(v).Returning("created_at").Exec(ctx)
	t.metrics.Database.RecordQuery(ctx, "insert", "votes", time.Since(start), err)

	switch db.Classify(err) {
	case db.KindNone:
		return nil
	case db.KindUnique:
		return ErrDuplicateCandidateVote
	case db.KindForeignKey, db.KindCheck, db.KindIntegrity:
		return fmt.Errorf("%w: %s", ErrStorageConflict, db.Constraint(err))
	}
	return err
}

func (t *txStore) SetHasVoted(ctx context.Context, voterID int, hasVoted bool) error {
	start := time.Now()
	_, err := t.tx.NewUpdate().
		Model((*voter.Voter)(nil)).
		Set("has_voted = ?", hasVoted).
		Set("updated_at = current_timestamp").
		Where("id = ?", voterID).
		Exec(ctx)
	t.metrics.Database.RecordQuery(ctx, "update", "voters", time.Since(start), err)

	return err
}

func (t *txStore) DeleteVoterVotes(ctx context.Context, voterID, electionID int) (int, error) {
	start := time.Now()
	result, err := t.tx.NewDelete().
		Model((*Vote)(nil)).
		Where("voter_id = ?", voterID).
		Where("election_id = ?", electionID).
		Exec(ctx)
	t.metrics.Database.RecordQuery(ctx, "delete", "votes", time.Since(start), err)

	return affected(result, err)
}

func (t *txStore) DeleteElectionVotes(ctx context.Context, electionID int) (int, error) {
	start := time.Now()
	result, err := t.tx.NewDelete().
		Model((*Vote)(nil)).
		Where("election_id = ?", electionID).
		Exec(ctx)
	t.metrics.Database.RecordQuery(ctx, "delete", "votes", time.Since(start), err)

	return affected(result, err)
}

func (t *txStore) ClearHasVoted(ctx context.Context) (int, error) {
	start := time.Now()
	result, err := t.tx.NewUpdate().
		Model((*voter.Voter)(nil)).
		Set("has_voted = FALSE").
		Set("updated_at = current_timestamp").
		Where("has_voted = TRUE").
		Exec(ctx)
	t.metrics.Database.RecordQuery(ctx, "update", "voters", time.Since(start), err)

	return affected(result, err)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affected(result rowsAffecter, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// storageError leaves vote and domain errors alone and folds driver and
// connection failures into ErrStorageUnavailable or ErrStorageConflict.
func storageError(err error) error {
	if err == nil || Code(err) != "Internal" {
		return err
	}
	switch db.Classify(err) {
	case db.KindUnavailable:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	case db.KindUnique, db.KindForeignKey, db.KindCheck, db.KindIntegrity:
		return fmt.Errorf("%w: %v", ErrStorageConflict, err)
	}
	return err
}
