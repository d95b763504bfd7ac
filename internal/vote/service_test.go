package vote_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"election-service/internal/election"
	"election-service/internal/events"
	"election-service/internal/logger"
	"election-service/internal/metrics"
	"election-service/internal/vote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	president = 1
	senator   = 2
	treasurer = 3
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NextVoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("vote-%d", s.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// newFixture seeds one active election with a President (limit 1), a
// Senator (limit 8) and a Treasurer (limit 1) race.
func newFixture(t *testing.T) (*memStore, vote.Service, *recordingPublisher) {
	t.Helper()

	store := newMemStore()
	store.addElection(1, election.StatusActive)
	store.addElection(2, election.StatusEnded)
	store.addPosition(president, "President", 1, 1)
	store.addPosition(senator, "Senator", 8, 2)
	store.addPosition(treasurer, "Treasurer", 1, 3)
	store.addCandidate(101, president, 1)
	store.addCandidate(102, president, 1)
	for id := 201; id <= 210; id++ {
		store.addCandidate(id, senator, 1)
	}
	store.addCandidate(301, treasurer, 1)
	store.addCandidate(302, treasurer, 1)
	store.addVoter(1)
	store.addVoter(2)

	pub := &recordingPublisher{}
	emitter := events.NewEmitter(pub, metrics.NewMock(), logger.Discard(), func() string { return "evt" })
	svc := vote.NewService(store, &seqIDs{}, emitter, metrics.NewMock(), logger.Discard())
	return store, svc, pub
}

func senators(n int) []vote.BallotItem {
	items := make([]vote.BallotItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, vote.BallotItem{PositionID: senator, CandidateID: 201 + i})
	}
	return items
}

func TestRecordVote(t *testing.T) {
	ctx := context.Background()

	t.Run("records and keeps the ballot open", func(t *testing.T) {
		store, svc, pub := newFixture(t)

		receipt, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		require.NoError(t, err)
		assert.Equal(t, "vote-1", receipt.VoteID)
		assert.Equal(t, 1, receipt.ElectionID)
		assert.False(t, receipt.HasVoted)
		assert.False(t, receipt.RecordedAt.IsZero())
		assert.False(t, store.voters[1].HasVoted)
		assert.Equal(t, 1, store.voteCount())
		assert.Equal(t, []string{events.TypeVoteCast}, pub.types())
	})

	t.Run("president allows a single vote", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		require.NoError(t, err)

		_, err = svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 102})
		require.ErrorIs(t, err, vote.ErrPositionVoteLimitExceeded)

		var limitErr *vote.LimitError
		require.True(t, errors.As(err, &limitErr))
		assert.Equal(t, "President", limitErr.PositionName)
		assert.Equal(t, 1, limitErr.Limit)
		assert.Equal(t, "PositionVoteLimitExceeded", vote.Code(err))
		assert.Equal(t, 1, store.voteCount())
	})

	t.Run("same candidate twice", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: senator, CandidateID: 201})
		require.NoError(t, err)
		_, err = svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: senator, CandidateID: 201})
		assert.ErrorIs(t, err, vote.ErrDuplicateCandidateVote)
	})

	t.Run("last vote closes the ballot", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		receipt, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101, IsLastVote: true})
		require.NoError(t, err)
		assert.True(t, receipt.HasVoted)
		assert.True(t, store.voters[1].HasVoted)

		_, err = svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: treasurer, CandidateID: 301})
		assert.ErrorIs(t, err, vote.ErrVoterAlreadyVoted)
	})

	t.Run("rejected last vote leaves the ballot open", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 301, IsLastVote: true})
		assert.ErrorIs(t, err, vote.ErrCandidateMismatch)
		assert.False(t, store.voters[1].HasVoted)
		assert.Zero(t, store.voteCount())
	})

	t.Run("validation errors", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		tests := []struct {
			name string
			req  vote.SingleVote
			want error
		}{
			{"unknown candidate", vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 999}, vote.ErrCandidateNotFound},
			{"candidate runs elsewhere", vote.SingleVote{VoterID: 1, PositionID: senator, CandidateID: 101}, vote.ErrCandidateMismatch},
			{"unknown voter", vote.SingleVote{VoterID: 42, PositionID: president, CandidateID: 101}, vote.ErrVoterNotFound},
			{"other election", vote.SingleVote{VoterID: 1, ElectionID: 2, PositionID: president, CandidateID: 101}, vote.ErrElectionNotActive},
			{"missing candidate id", vote.SingleVote{VoterID: 1, PositionID: president}, vote.ErrInvalidInput},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.RecordVote(ctx, tt.req)
				assert.ErrorIs(t, err, tt.want)
				assert.True(t, vote.IsValidation(err))
			})
		}
	})

	t.Run("candidate whose position is gone", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.addCandidate(401, 9)

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: 9, CandidateID: 401})
		assert.ErrorIs(t, err, vote.ErrPositionNotFound)
	})

	t.Run("no active election", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.elections[1].Status = election.StatusPaused

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		assert.ErrorIs(t, err, vote.ErrNoActiveElection)
	})

	t.Run("election paused mid-flight", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.onLockElection = func(e *election.Election) { e.Status = election.StatusPaused }

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		assert.ErrorIs(t, err, vote.ErrElectionNotActive)
		assert.Zero(t, store.voteCount())
	})

	t.Run("storage unavailable", func(t *testing.T) {
		store, svc, pub := newFixture(t)
		store.unavailable = true

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		assert.ErrorIs(t, err, vote.ErrStorageUnavailable)
		assert.False(t, vote.IsValidation(err))
		assert.Empty(t, pub.types())
	})

	t.Run("publish failure does not fail the vote", func(t *testing.T) {
		store, svc, pub := newFixture(t)
		pub.err = errors.New("broker down")

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: president, CandidateID: 101})
		require.NoError(t, err)
		assert.Equal(t, 1, store.voteCount())
	})
}

func TestRecordVotes(t *testing.T) {
	ctx := context.Background()

	t.Run("full ballot commits and closes", func(t *testing.T) {
		store, svc, pub := newFixture(t)

		items := append([]vote.BallotItem{
			{PositionID: treasurer, CandidateID: 301},
			{PositionID: president, CandidateID: 102},
		}, senators(8)...)

		receipt, err := svc.RecordVotes(ctx, 1, items)
		require.NoError(t, err)
		assert.True(t, receipt.Committed)
		assert.True(t, receipt.HasVoted)
		assert.Equal(t, vote.BatchSummary{Total: 10, Succeeded: 10}, receipt.Summary)
		assert.Equal(t, 10, store.voteCount())
		assert.True(t, store.voters[1].HasVoted)
		assert.Equal(t, []string{events.TypeVoteBatchCast}, pub.types())

		// processed in (position, candidate) order
		assert.Equal(t, president, receipt.Results[0].PositionID)
		assert.Equal(t, 1, receipt.Results[0].Index)
		assert.Equal(t, treasurer, receipt.Results[9].PositionID)
		assert.Equal(t, 0, receipt.Results[9].Index)
		for _, r := range receipt.Results {
			assert.Equal(t, vote.ItemRecorded, r.Status)
			assert.NotEmpty(t, r.VoteID)
		}
	})

	t.Run("ninth senator rolls back the ballot", func(t *testing.T) {
		store, svc, pub := newFixture(t)

		receipt, err := svc.RecordVotes(ctx, 1, senators(9))
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		require.NotNil(t, receipt)
		assert.False(t, receipt.Committed)
		assert.False(t, receipt.HasVoted)
		assert.Equal(t, vote.BatchSummary{Total: 9, Succeeded: 8, Failed: 1}, receipt.Summary)

		last := receipt.Results[8]
		assert.Equal(t, 209, last.CandidateID)
		assert.Equal(t, vote.ItemRejected, last.Status)
		assert.Equal(t, "PositionVoteLimitExceeded", last.Code)
		for _, r := range receipt.Results[:8] {
			assert.Equal(t, vote.ItemValid, r.Status)
			assert.Empty(t, r.VoteID)
		}

		assert.Zero(t, store.voteCount())
		assert.False(t, store.voters[1].HasVoted)
		assert.Empty(t, pub.types())
	})

	t.Run("duplicate in the middle rolls back everything", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		items := []vote.BallotItem{
			{PositionID: senator, CandidateID: 201},
			{PositionID: senator, CandidateID: 202},
			{PositionID: senator, CandidateID: 201},
			{PositionID: senator, CandidateID: 203},
			{PositionID: president, CandidateID: 101},
		}
		receipt, err := svc.RecordVotes(ctx, 1, items)
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		assert.Equal(t, vote.BatchSummary{Total: 5, Succeeded: 4, Failed: 1}, receipt.Summary)

		var rejected []vote.ItemResult
		for _, r := range receipt.Results {
			if r.Status == vote.ItemRejected {
				rejected = append(rejected, r)
			}
		}
		require.Len(t, rejected, 1)
		assert.Equal(t, 2, rejected[0].Index)
		assert.Equal(t, "DuplicateCandidateVote", rejected[0].Code)
		assert.Zero(t, store.voteCount())
	})

	t.Run("every failing item is reported", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		items := []vote.BallotItem{
			{PositionID: president, CandidateID: 999},
			{PositionID: president, CandidateID: 301},
			{PositionID: treasurer, CandidateID: 301},
		}
		receipt, err := svc.RecordVotes(ctx, 1, items)
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		assert.Equal(t, 2, receipt.Summary.Failed)
		assert.Equal(t, "CandidateMismatch", receipt.Results[0].Code)
		assert.Equal(t, "CandidateNotFound", receipt.Results[1].Code)
		assert.Equal(t, vote.ItemValid, receipt.Results[2].Status)
	})

	t.Run("counts earlier single votes", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: senator, CandidateID: 210})
		require.NoError(t, err)

		receipt, err := svc.RecordVotes(ctx, 1, senators(8))
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		assert.Equal(t, "PositionVoteLimitExceeded", receipt.Results[7].Code)
		assert.Equal(t, 1, store.voteCount())
	})

	t.Run("insert conflict stops processing", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.insertErr = func(v *vote.Vote) error {
			if v.CandidateID == 202 {
				return vote.ErrDuplicateCandidateVote
			}
			return nil
		}

		receipt, err := svc.RecordVotes(ctx, 1, senators(4))
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		statuses := make([]vote.ItemStatus, 0, 4)
		for _, r := range receipt.Results {
			statuses = append(statuses, r.Status)
		}
		assert.Equal(t, []vote.ItemStatus{vote.ItemValid, vote.ItemRejected, vote.ItemNotProcessed, vote.ItemNotProcessed}, statuses)
		assert.Equal(t, vote.BatchSummary{Total: 4, Succeeded: 1, Failed: 1}, receipt.Summary)
		assert.Zero(t, store.voteCount())
	})

	t.Run("item for another election", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		receipt, err := svc.RecordVotes(ctx, 1, []vote.BallotItem{{ElectionID: 2, PositionID: president, CandidateID: 101}})
		require.ErrorIs(t, err, vote.ErrBatchRejected)
		assert.Equal(t, "ElectionNotActive", receipt.Results[0].Code)
	})

	t.Run("second ballot is refused", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		_, err := svc.RecordVotes(ctx, 1, senators(1))
		require.NoError(t, err)

		receipt, err := svc.RecordVotes(ctx, 1, []vote.BallotItem{{PositionID: president, CandidateID: 101}})
		assert.ErrorIs(t, err, vote.ErrVoterAlreadyVoted)
		assert.Nil(t, receipt)
	})

	t.Run("empty ballot", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		_, err := svc.RecordVotes(ctx, 1, nil)
		assert.ErrorIs(t, err, vote.ErrEmptyBatch)
	})

	t.Run("no active election", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.elections[1].Status = election.StatusStopped

		_, err := svc.RecordVotes(ctx, 1, senators(1))
		assert.ErrorIs(t, err, vote.ErrNoActiveElection)
	})

	t.Run("concurrent ballots of one voter", func(t *testing.T) {
		store, svc, _ := newFixture(t)

		var wg sync.WaitGroup
		errs := make([]error, 5)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.RecordVotes(ctx, 1, []vote.BallotItem{{PositionID: president, CandidateID: 101}})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, vote.ErrVoterAlreadyVoted)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, store.voteCount())
	})
}

func TestResets(t *testing.T) {
	ctx := context.Background()

	t.Run("voter reset reopens the ballot", func(t *testing.T) {
		store, svc, pub := newFixture(t)

		_, err := svc.RecordVotes(ctx, 1, senators(3))
		require.NoError(t, err)
		_, err = svc.RecordVote(ctx, vote.SingleVote{VoterID: 2, PositionID: president, CandidateID: 101})
		require.NoError(t, err)

		removed, err := svc.ResetVoter(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		assert.False(t, store.voters[1].HasVoted)
		assert.Equal(t, 1, store.voteCount())
		assert.Contains(t, pub.types(), events.TypeVoteReset)

		_, err = svc.RecordVotes(ctx, 1, senators(2))
		assert.NoError(t, err)
	})

	t.Run("unknown voter", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		_, err := svc.ResetVoter(ctx, 99, 1)
		assert.ErrorIs(t, err, vote.ErrVoterNotFound)
	})

	t.Run("election reset", func(t *testing.T) {
		store, svc, pub := newFixture(t)

		_, err := svc.RecordVotes(ctx, 1, senators(2))
		require.NoError(t, err)
		_, err = svc.RecordVotes(ctx, 2, senators(1))
		require.NoError(t, err)

		removed, err := svc.ResetElection(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		assert.Zero(t, store.voteCount())
		assert.False(t, store.voters[1].HasVoted)
		assert.False(t, store.voters[2].HasVoted)
		assert.Contains(t, pub.types(), events.TypeElectionReset)
	})

	t.Run("unknown election", func(t *testing.T) {
		_, svc, _ := newFixture(t)

		_, err := svc.ResetElection(ctx, 7)
		assert.ErrorIs(t, err, election.ErrElectionNotFound)

		_, err = svc.ResetVoter(ctx, 1, 7)
		assert.ErrorIs(t, err, election.ErrElectionNotFound)
	})

	t.Run("voter reset of an ended election keeps the open ballot closed", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.votes = append(store.votes, vote.Vote{ID: "old-1", VoterID: 1, ElectionID: 2, PositionID: president, CandidateID: 101})

		_, err := svc.RecordVotes(ctx, 1, senators(2))
		require.NoError(t, err)
		require.True(t, store.voters[1].HasVoted)

		removed, err := svc.ResetVoter(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.True(t, store.voters[1].HasVoted)
		assert.Equal(t, 2, store.voteCount())

		_, err = svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: treasurer, CandidateID: 301})
		assert.ErrorIs(t, err, vote.ErrVoterAlreadyVoted)
		assert.Equal(t, 2, store.voteCount())
	})

	t.Run("election reset of an ended election keeps flags", func(t *testing.T) {
		store, svc, _ := newFixture(t)
		store.votes = append(store.votes, vote.Vote{ID: "old-1", VoterID: 2, ElectionID: 2, PositionID: president, CandidateID: 101})

		_, err := svc.RecordVotes(ctx, 1, senators(1))
		require.NoError(t, err)

		removed, err := svc.ResetElection(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.True(t, store.voters[1].HasVoted)
		assert.Equal(t, 1, store.voteCount())
	})
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(t)

	_, err := svc.RecordVotes(ctx, 1, []vote.BallotItem{
		{PositionID: president, CandidateID: 102},
		{PositionID: senator, CandidateID: 203},
	})
	require.NoError(t, err)
	_, err = svc.RecordVotes(ctx, 2, []vote.BallotItem{
		{PositionID: president, CandidateID: 102},
		{PositionID: senator, CandidateID: 201},
		{PositionID: senator, CandidateID: 203},
	})
	require.NoError(t, err)

	results, err := svc.Results(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, results.ElectionID)
	assert.Equal(t, "active", results.Status)
	require.Len(t, results.Positions, 3)

	pres := results.Positions[0]
	assert.Equal(t, "President", pres.PositionName)
	assert.Equal(t, 1, pres.VoteLimit)
	assert.Equal(t, 2, pres.TotalVotes)
	require.Len(t, pres.Candidates, 2)
	assert.Equal(t, 102, pres.Candidates[0].CandidateID)
	assert.Equal(t, 2, pres.Candidates[0].VoteCount)
	assert.Equal(t, 101, pres.Candidates[1].CandidateID)
	assert.Zero(t, pres.Candidates[1].VoteCount)

	sen := results.Positions[1]
	assert.Equal(t, 3, sen.TotalVotes)
	assert.Equal(t, []int{203, 201, 202}, []int{sen.Candidates[0].CandidateID, sen.Candidates[1].CandidateID, sen.Candidates[2].CandidateID})

	assert.Equal(t, "Treasurer", results.Positions[2].PositionName)
	assert.Zero(t, results.Positions[2].TotalVotes)

	t.Run("by id", func(t *testing.T) {
		results, err := svc.Results(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "ended", results.Status)
		assert.Empty(t, results.Positions)
	})

	t.Run("unknown election", func(t *testing.T) {
		_, err := svc.Results(ctx, 9)
		assert.ErrorIs(t, err, election.ErrElectionNotFound)
	})

	t.Run("no active election", func(t *testing.T) {
		store.elections[1].Status = election.StatusEnded
		defer func() { store.elections[1].Status = election.StatusActive }()

		_, err := svc.Results(ctx, 0)
		assert.ErrorIs(t, err, vote.ErrNoActiveElection)
	})
}

func TestVoterVotes(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newFixture(t)

	_, err := svc.RecordVote(ctx, vote.SingleVote{VoterID: 1, PositionID: senator, CandidateID: 204})
	require.NoError(t, err)

	votes, err := svc.VoterVotes(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, 204, votes[0].CandidateID)

	votes, err = svc.VoterVotes(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, votes)
}
