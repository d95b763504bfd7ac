package vote

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveElection          = errors.New("no active election")
	ErrElectionNotActive         = errors.New("election is not active")
	ErrVoterNotFound             = errors.New("voter not found")
	ErrVoterAlreadyVoted         = errors.New("voter has already voted")
	ErrCandidateNotFound         = errors.New("candidate not found")
	ErrPositionNotFound          = errors.New("position not found")
	ErrCandidateMismatch         = errors.New("candidate is not running for this position")
	ErrPositionVoteLimitExceeded = errors.New("position vote limit exceeded")
	ErrDuplicateCandidateVote    = errors.New("candidate already voted for")
	ErrStorageConflict           = errors.New("storage conflict")
	ErrStorageUnavailable        = errors.New("storage unavailable")

	ErrBatchRejected = errors.New("ballot rejected; no votes were recorded")
	ErrEmptyBatch    = errors.New("ballot has no votes")
	ErrInvalidInput  = errors.New("invalid input")
)

// LimitError names the position whose vote limit a submission would exceed.
type LimitError struct {
	PositionID   int
	PositionName string
	Limit        int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("position %q allows at most %d vote(s)", e.PositionName, e.Limit)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrPositionVoteLimitExceeded
}

var codes = []struct {
	err  error
	code string
}{
	{ErrNoActiveElection, "NoActiveElection"},
	{ErrElectionNotActive, "ElectionNotActive"},
	{ErrVoterNotFound, "VoterNotFound"},
	{ErrVoterAlreadyVoted, "VoterAlreadyVoted"},
	{ErrCandidateNotFound, "CandidateNotFound"},
	{ErrPositionNotFound, "PositionNotFound"},
	{ErrCandidateMismatch, "CandidateMismatch"},
	{ErrPositionVoteLimitExceeded, "PositionVoteLimitExceeded"},
	{ErrDuplicateCandidateVote, "DuplicateCandidateVote"},
	{ErrStorageConflict, "StorageConflict"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrBatchRejected, "BatchRejected"},
	{ErrEmptyBatch, "EmptyBatch"},
	{ErrInvalidInput, "InvalidInput"},
}

// Code returns the stable machine-readable code for err, or "Internal" when
// err is not part of the vote error set.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}

// IsValidation reports whether err is a rejection of the submission itself
// rather than a storage failure.
func IsValidation(err error) bool {
	switch Code(err) {
	case "", "Internal", "StorageConflict", "StorageUnavailable":
		return false
	}
	return true
}
