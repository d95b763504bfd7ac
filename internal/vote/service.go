package vote

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"election-service/internal/events"
	"election-service/internal/idgen"
	"election-service/internal/metrics"
	"election-service/internal/voter"
)

type Service interface {
	RecordVote(ctx context.Context, req SingleVote) (*VoteReceipt, error)
	RecordVotes(ctx context.Context, voterID int, items []BallotItem) (*BatchReceipt, error)
	ResetVoter(ctx context.Context, voterID, electionID int) (int, error)
	ResetElection(ctx context.Context, electionID int) (int, error)
	VoterVotes(ctx context.Context, voterID, electionID int) ([]Vote, error)
	Tally(ctx context.Context, electionID int) ([]TallyRow, error)
	Results(ctx context.Context, electionID int) (*Results, error)
}

type service struct {
	store   Store
	gate    *Gate
	ids     idgen.Generator
	events  *events.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, ids idgen.Generator, emitter *events.Emitter, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		store:   store,
		gate:    NewGate(store),
		ids:     ids,
		events:  emitter,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// RecordVote records one incremental vote. The voter row stays locked for
// the whole transaction so two submissions of the same voter run one after
// the other.
func (s *service) RecordVote(ctx context.Context, req SingleVote) (*VoteReceipt, error) {
	if req.VoterID <= 0 || req.PositionID <= 0 || req.CandidateID <= 0 {
		return nil, ErrInvalidInput
	}
	active, err := s.gate.Resolve(ctx, req.ElectionID)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	item := BallotItem{ElectionID: active.ID, PositionID: req.PositionID, CandidateID: req.CandidateID}
	receipt := &VoteReceipt{
		VoteID:      s.ids.NextVoteID(),
		VoterID:     req.VoterID,
		ElectionID:  active.ID,
		PositionID:  req.PositionID,
		CandidateID: req.CandidateID,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := s.gate.recheck(ctx, tx, active.ID); err != nil {
			return err
		}
		if _, err := lockVoter(ctx, tx, req.VoterID); err != nil {
			return err
		}
		if _, err := validateItem(ctx, tx, req.VoterID, active.ID, item, newStaging()); err != nil {
			return err
		}

		v := &Vote{
			ID:          receipt.VoteID,
			VoterID:     req.VoterID,
			ElectionID:  active.ID,
			PositionID:  req.PositionID,
			CandidateID: req.CandidateID,
		}
		if err := tx.InsertVote(ctx, v); err != nil {
			return err
		}
		receipt.RecordedAt = v.CreatedAt

		if req.IsLastVote {
			if err := tx.SetHasVoted(ctx, req.VoterID, true); err != nil {
				return err
			}
			receipt.HasVoted = true
		}
		return nil
	})
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}
	if receipt.RecordedAt.IsZero() {
		receipt.RecordedAt = s.now().UTC()
	}

	s.metrics.RecordVotes(ctx, 1)
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeVoteCast,
		ElectionID: active.ID,
		VoterID:    req.VoterID,
		Data:       receipt,
	})
	return receipt, nil
}

// RecordVotes records a whole ballot atomically. Items are processed in
// (positionID, candidateID) order and every item is validated before any is
// inserted; a single failure rolls the batch back and the receipt says which
// items failed and why.
func (s *service) RecordVotes(ctx context.Context, voterID int, items []BallotItem) (*BatchReceipt, error) {
	if voterID <= 0 {
		return nil, ErrInvalidInput
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	active, err := s.gate.Active(ctx)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := items[order[a]], items[order[b]]
		if x.PositionID != y.PositionID {
			return x.PositionID < y.PositionID
		}
		return x.CandidateID < y.CandidateID
	})

	receipt := &BatchReceipt{
		VoterID:    voterID,
		ElectionID: active.ID,
		Results:    make([]ItemResult, len(items)),
	}
	for n, idx := range order {
		receipt.Results[n] = ItemResult{
			Index:       idx,
			PositionID:  items[idx].PositionID,
			CandidateID: items[idx].CandidateID,
			Status:      ItemNotProcessed,
		}
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := s.gate.recheck(ctx, tx, active.ID); err != nil {
			return err
		}
		if _, err := lockVoter(ctx, tx, voterID); err != nil {
			return err
		}

		staged := newStaging()
		failed := false
		for n, idx := range order {
			item := items[idx]
			result := &receipt.Results[n]

			var err error
			if item.ElectionID != 0 && item.ElectionID != active.ID {
				err = ErrElectionNotActive
			} else if item.PositionID <= 0 || item.CandidateID <= 0 {
				err = ErrInvalidInput
			} else {
				_, err = validateItem(ctx, tx, voterID, active.ID, item, staged)
			}
			if err != nil {
				if !IsValidation(err) {
					return err
				}
				failed = true
				result.Status, result.Code, result.Error = ItemRejected, Code(err), err.Error()
				continue
			}
			staged.add(item)
			result.Status = ItemValid
		}
		if failed {
			return ErrBatchRejected
		}

		for n, idx := range order {
			item := items[idx]
			result := &receipt.Results[n]
			v := &Vote{
				ID:          s.ids.NextVoteID(),
				VoterID:     voterID,
				ElectionID:  active.ID,
				PositionID:  item.PositionID,
				CandidateID: item.CandidateID,
			}
			if err := tx.InsertVote(ctx, v); err != nil {
				if errors.Is(err, ErrDuplicateCandidateVote) {
					result.Status, result.Code, result.Error = ItemRejected, Code(err), err.Error()
					for rest := n + 1; rest < len(order); rest++ {
						receipt.Results[rest].Status = ItemNotProcessed
					}
					return ErrBatchRejected
				}
				return err
			}
			result.VoteID = v.ID
		}

		if err := tx.SetHasVoted(ctx, voterID, true); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, ErrBatchRejected) {
			s.reject(ctx, err)
			return nil, err
		}
		receipt.summarize(false)
		s.metrics.RecordBatchRejected(ctx)
		for _, r := range receipt.Results {
			if r.Status == ItemRejected {
				s.metrics.RecordVoteRejected(ctx, r.Code)
			}
		}
		s.logger.InfoContext(ctx, "ballot rejected",
			"voter_id", voterID,
			"election_id", active.ID,
			"failed", receipt.Summary.Failed,
		)
		return receipt, ErrBatchRejected
	}

	receipt.summarize(true)
	s.metrics.RecordVotes(ctx, len(items))
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeVoteBatchCast,
		ElectionID: active.ID,
		VoterID:    voterID,
		Data:       receipt.Summary,
	})
	return receipt, nil
}

func (r *BatchReceipt) summarize(committed bool) {
	r.Committed = committed
	r.HasVoted = committed
	r.Summary = BatchSummary{Total: len(r.Results)}
	for i := range r.Results {
		switch {
		case committed:
			r.Results[i].Status = ItemRecorded
			r.Summary.Succeeded++
		case r.Results[i].Status == ItemValid:
			r.Summary.Succeeded++
		case r.Results[i].Status == ItemRejected:
			r.Summary.Failed++
		}
	}
	if !committed {
		for i := range r.Results {
			r.Results[i].VoteID = ""
		}
	}
}

// ResetVoter deletes the voter's votes in the election and, when that
// election is still open, reopens their ballot. electionID 0 means the
// active election.
func (s *service) ResetVoter(ctx context.Context, voterID, electionID int) (int, error) {
	if voterID <= 0 || electionID < 0 {
		return 0, ErrInvalidInput
	}
	if electionID == 0 {
		active, err := s.gate.Active(ctx)
		if err != nil {
			return 0, err
		}
		electionID = active.ID
	}

	var removed int
	err := s.store.InTx(ctx, func(ctx context.Context, tx TxStore) error {
		target, err := tx.LockElection(ctx, electionID)
		if err != nil {
			return err
		}
		if _, err := tx.LockVoter(ctx, voterID); err != nil {
			if errors.Is(err, voter.ErrVoterNotFound) {
				return ErrVoterNotFound
			}
			return err
		}
		n, err := tx.DeleteVoterVotes(ctx, voterID, electionID)
		if err != nil {
			return err
		}
		removed = n
		// An ended election's reset must not reopen the ballot of the open one.
		if !target.IsOpen() {
			return nil
		}
		return tx.SetHasVoted(ctx, voterID, false)
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "voter reset", "voter_id", voterID, "election_id", electionID, "votes_removed", removed)
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeVoteReset,
		ElectionID: electionID,
		VoterID:    voterID,
		Data:       map[string]int{"votesRemoved": removed},
	})
	return removed, nil
}

// ResetElection clears every vote of the election. Voters' has_voted flags
// are cleared only when the election is still open.
func (s *service) ResetElection(ctx context.Context, electionID int) (int, error) {
	if electionID <= 0 {
		return 0, ErrInvalidInput
	}
	if _, err := s.store.Election(ctx, electionID); err != nil {
		return 0, err
	}

	var removed int
	err := s.store.InTx(ctx, func(ctx context.Context, tx TxStore) error {
		target, err := tx.LockElection(ctx, electionID)
		if err != nil {
			return err
		}
		n, err := tx.DeleteElectionVotes(ctx, electionID)
		if err != nil {
			return err
		}
		removed = n
		if !target.IsOpen() {
			return nil
		}
		_, err = tx.ClearHasVoted(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.WarnContext(ctx, "election votes reset", "election_id", electionID, "votes_removed", removed)
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeElectionReset,
		ElectionID: electionID,
		Data:       map[string]int{"votesRemoved": removed},
	})
	return removed, nil
}

// VoterVotes lists what the voter has recorded. electionID 0 means the
// active election.
func (s *service) VoterVotes(ctx context.Context, voterID, electionID int) ([]Vote, error) {
	if voterID <= 0 || electionID < 0 {
		return nil, ErrInvalidInput
	}
	if electionID == 0 {
		active, err := s.gate.Active(ctx)
		if err != nil {
			return nil, err
		}
		electionID = active.ID
	}
	return s.store.VoterVotes(ctx, voterID, electionID)
}

func (s *service) Tally(ctx context.Context, electionID int) ([]TallyRow, error) {
	if electionID <= 0 {
		return nil, ErrInvalidInput
	}
	rows, err := s.store.Tally(ctx, electionID)
	if err != nil {
		return nil, err
	}
	sortTally(rows)
	return rows, nil
}

// Results is the tally grouped per position. electionID 0 means the active
// election.
func (s *service) Results(ctx context.Context, electionID int) (*Results, error) {
	if electionID < 0 {
		return nil, ErrInvalidInput
	}
	target, err := s.resolveForRead(ctx, electionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Tally(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordResultsViewed(ctx)
	results := &Results{
		ElectionID:    target.ID,
		ElectionTitle: target.Title,
		Status:        string(target.Status),
		Positions:     groupTally(rows),
	}
	return results, nil
}

// reject counts validation failures by code. Storage errors are left to the
// database metrics.
func (s *service) reject(ctx context.Context, err error) {
	if !IsValidation(err) {
		return
	}
	s.metrics.RecordVoteRejected(ctx, Code(err))
	s.logger.DebugContext(ctx, "vote rejected", "code", Code(err), "error", err)
}
