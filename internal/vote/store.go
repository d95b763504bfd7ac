package vote

import (
	"context"

	"election-service/internal/candidate"
	"election-service/internal/election"
	"election-service/internal/position"
	"election-service/internal/voter"
)

// Store is the persistence the vote flow needs. Lookups return the owning
// package's not-found errors (voter.ErrVoterNotFound and so on).
type Store interface {
	ActiveElection(ctx context.Context) (*election.Election, error)
	Election(ctx context.Context, id int) (*election.Election, error)
	VoterVotes(ctx context.Context, voterID, electionID int) ([]Vote, error)
	Tally(ctx context.Context, electionID int) ([]TallyRow, error)

	// InTx runs fn in one transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// TxStore is the transactional view used while casting or resetting votes.
type TxStore interface {
	// LockElection reads the election FOR SHARE so it cannot change status
	// until the transaction ends.
	LockElection(ctx context.Context, id int) (*election.Election, error)
	// LockVoter reads the voter FOR UPDATE, serialising that voter's
	// submissions.
	LockVoter(ctx context.Context, id int) (*voter.Voter, error)

	Candidate(ctx context.Context, id int) (*candidate.Candidate, error)
	Position(ctx context.Context, id int) (*position.Position, error)
	CountPositionVotes(ctx context.Context, voterID, electionID, positionID int) (int, error)
	HasCandidateVote(ctx context.Context, voterID, electionID, candidateID int) (bool, error)

	// InsertVote reports ErrDuplicateCandidateVote on the unique key and
	// ErrStorageConflict on any other integrity violation.
	InsertVote(ctx context.Context, v *Vote) error
	SetHasVoted(ctx context.Context, voterID int, hasVoted bool) error

	DeleteVoterVotes(ctx context.Context, voterID, electionID int) (int, error)
	DeleteElectionVotes(ctx context.Context, electionID int) (int, error)
	ClearHasVoted(ctx context.Context) (int, error)
}
