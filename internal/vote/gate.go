package vote

import (
	"context"
	"errors"

	"election-service/internal/election"
)

// Gate decides which election a submission belongs to. Only the single
// active election accepts votes.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

func (g *Gate) Active(ctx context.Context) (*election.Election, error) {
	return g.store.ActiveElection(ctx)
}

// Resolve maps a requested election id onto the active election. Zero means
// "whichever is active"; any other id must be that election.
func (g *Gate) Resolve(ctx context.Context, electionID int) (*election.Election, error) {
	if electionID < 0 {
		return nil, ErrInvalidInput
	}
	active, err := g.store.ActiveElection(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveElection) && electionID != 0 {
			return nil, ErrElectionNotActive
		}
		return nil, err
	}
	if electionID != 0 && electionID != active.ID {
		return nil, ErrElectionNotActive
	}
	return active, nil
}

// recheck re-reads the election inside the vote transaction. The share lock
// keeps a concurrent pause or end waiting until the votes commit.
func (g *Gate) recheck(ctx context.Context, tx TxStore, electionID int) error {
	e, err := tx.LockElection(ctx, electionID)
	if err != nil {
		if errors.Is(err, election.ErrElectionNotFound) {
			return ErrElectionNotActive
		}
		return err
	}
	if !e.IsActive() {
		return ErrElectionNotActive
	}
	return nil
}
