package vote

import (
	"context"
	"errors"

	"election-service/internal/candidate"
	"election-service/internal/position"
	"election-service/internal/voter"
)

// staging tracks items accepted earlier in the same batch, which count
// against limits and duplicates as if already stored.
type staging struct {
	perPosition map[int]int
	candidates  map[int]bool
}

func newStaging() *staging {
	return &staging{perPosition: map[int]int{}, candidates: map[int]bool{}}
}

func (s *staging) add(item BallotItem) {
	s.perPosition[item.PositionID]++
	s.candidates[item.CandidateID] = true
}

// Check is what a successful validation learned about the item.
type Check struct {
	CurrentCount int
	Limit        int
}

// checkVoter is step 1: the voter exists and has not closed their ballot.
func checkVoter(v *voter.Voter) error {
	if v == nil {
		return ErrVoterNotFound
	}
	if v.HasVoted {
		return ErrVoterAlreadyVoted
	}
	return nil
}

// validateItem runs steps 2 to 5 for one item:
//
//  2. the candidate exists and runs for the given position
//  3. the position exists
//  4. stored plus staged votes for the position stay under its vote limit
//  5. neither a stored nor a staged vote names the same candidate
func validateItem(ctx context.Context, tx TxStore, voterID, electionID int, item BallotItem, staged *staging) (Check, error) {
	c, err := tx.Candidate(ctx, item.CandidateID)
	if err != nil {
		if errors.Is(err, candidate.ErrCandidateNotFound) {
			return Check{}, ErrCandidateNotFound
		}
		return Check{}, err
	}
	if c.PositionID != item.PositionID {
		return Check{}, ErrCandidateMismatch
	}

	p, err := tx.Position(ctx, item.PositionID)
	if err != nil {
		if errors.Is(err, position.ErrPositionNotFound) {
			return Check{}, ErrPositionNotFound
		}
		return Check{}, err
	}

	stored, err := tx.CountPositionVotes(ctx, voterID, electionID, item.PositionID)
	if err != nil {
		return Check{}, err
	}
	current := stored + staged.perPosition[item.PositionID]
	if current >= p.VoteLimit {
		return Check{}, &LimitError{PositionID: p.ID, PositionName: p.Name, Limit: p.VoteLimit}
	}

	if staged.candidates[item.CandidateID] {
		return Check{}, ErrDuplicateCandidateVote
	}
	exists, err := tx.HasCandidateVote(ctx, voterID, electionID, item.CandidateID)
	if err != nil {
		return Check{}, err
	}
	if exists {
		return Check{}, ErrDuplicateCandidateVote
	}

	return Check{CurrentCount: current, Limit: p.VoteLimit}, nil
}

// lockVoter is the voter half of step 1, done once per transaction.
func lockVoter(ctx context.Context, tx TxStore, voterID int) (*voter.Voter, error) {
	v, err := tx.LockVoter(ctx, voterID)
	if err != nil {
		if errors.Is(err, voter.ErrVoterNotFound) {
			return nil, ErrVoterNotFound
		}
		return nil, err
	}
	if err := checkVoter(v); err != nil {
		return nil, err
	}
	return v, nil
}
