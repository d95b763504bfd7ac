package vote_test

import (
	"context"
	"fmt"
	"sync"

	"election-service/internal/candidate"
	"election-service/internal/election"
	"election-service/internal/position"
	"election-service/internal/vote"
	"election-service/internal/voter"
)

// memStore is an in-memory Store. Transactions run one at a time and roll
// back by restoring a snapshot of votes and voter flags.
type memStore struct {
	mu sync.Mutex

	elections  map[int]*election.Election
	voters     map[int]*voter.Voter
	candidates map[int]*candidate.Candidate
	positions  map[int]*position.Position
	ballot     map[int][]int
	votes      []vote.Vote

	// insertErr, when set, decides the outcome of each insert.
	insertErr func(v *vote.Vote) error
	// onLockElection runs before the in-transaction election read.
	onLockElection func(e *election.Election)
	unavailable    bool
}

func newMemStore() *memStore {
	return &memStore{
		elections:  map[int]*election.Election{},
		voters:     map[int]*voter.Voter{},
		candidates: map[int]*candidate.Candidate{},
		positions:  map[int]*position.Position{},
		ballot:     map[int][]int{},
	}
}

func (m *memStore) addElection(id int, status election.Status) *election.Election {
	e := &election.Election{ID: id, Title: fmt.Sprintf("Election %d", id), Status: status}
	m.elections[id] = e
	return e
}

func (m *memStore) addVoter(id int) *voter.Voter {
	v := &voter.Voter{ID: id, StudentID: fmt.Sprintf("2024-%05d", id), FirstName: "Voter", LastName: fmt.Sprint(id)}
	m.voters[id] = v
	return v
}

func (m *memStore) addPosition(id int, name string, limit, order int) {
	m.positions[id] = &position.Position{ID: id, Name: name, VoteLimit: limit, DisplayOrder: order}
}

func (m *memStore) addCandidate(id, positionID int, electionIDs ...int) {
	m.candidates[id] = &candidate.Candidate{ID: id, FirstName: "Candidate", LastName: fmt.Sprint(id), PositionID: positionID}
	for _, e := range electionIDs {
		m.ballot[e] = append(m.ballot[e], id)
	}
}

func (m *memStore) voteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.votes)
}

func (m *memStore) ActiveElection(ctx context.Context) (*election.Election, error) {
	if m.unavailable {
		return nil, vote.ErrStorageUnavailable
	}
	for _, e := range m.elections {
		if e.IsActive() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, vote.ErrNoActiveElection
}

func (m *memStore) Election(ctx context.Context, id int) (*election.Election, error) {
	e, ok := m.elections[id]
	if !ok {
		return nil, election.ErrElectionNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) VoterVotes(ctx context.Context, voterID, electionID int) ([]vote.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []vote.Vote
	for _, v := range m.votes {
		if v.VoterID == voterID && v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) Tally(ctx context.Context, electionID int) ([]vote.TallyRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[int]int{}
	for _, id := range m.ballot[electionID] {
		counts[id] += 0
	}
	for _, v := range m.votes {
		if v.ElectionID == electionID {
			counts[v.CandidateID]++
		}
	}

	var rows []vote.TallyRow
	for id, n := range counts {
		c := m.candidates[id]
		p := m.positions[c.PositionID]
		rows = append(rows, vote.TallyRow{
			PositionID:    p.ID,
			PositionName:  p.Name,
			DisplayOrder:  p.DisplayOrder,
			VoteLimit:     p.VoteLimit,
			CandidateID:   c.ID,
			CandidateName: c.FullName(),
			VoteCount:     n,
		})
	}
	return rows, nil
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx vote.TxStore) error) error {
	if m.unavailable {
		return vote.ErrStorageUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	votes := append([]vote.Vote(nil), m.votes...)
	flags := map[int]bool{}
	for id, v := range m.voters {
		flags[id] = v.HasVoted
	}

	if err := fn(ctx, &memTx{m: m}); err != nil {
		m.votes = votes
		for id, v := range m.voters {
			v.HasVoted = flags[id]
		}
		return err
	}
	return nil
}

type memTx struct {
	m *memStore
}

func (t *memTx) LockElection(ctx context.Context, id int) (*election.Election, error) {
	e, ok := t.m.elections[id]
	if !ok {
		return nil, election.ErrElectionNotFound
	}
	if t.m.onLockElection != nil {
		t.m.onLockElection(e)
	}
	cp := *e
	return &cp, nil
}

func (t *memTx) LockVoter(ctx context.Context, id int) (*voter.Voter, error) {
	v, ok := t.m.voters[id]
	if !ok {
		return nil, voter.ErrVoterNotFound
	}
	cp := *v
	return &cp, nil
}

func (t *memTx) Candidate(ctx context.Context, id int) (*candidate.Candidate, error) {
	c, ok := t.m.candidates[id]
	if !ok {
		return nil, candidate.ErrCandidateNotFound
	}
	return c, nil
}

func (t *memTx) Position(ctx context.Context, id int) (*position.Position, error) {
	p, ok := t.m.positions[id]
	if !ok {
		return nil, position.ErrPositionNotFound
	}
	return p, nil
}

func (t *memTx) CountPositionVotes(ctx context.Context, voterID, electionID, positionID int) (int, error) {
	n := 0
	for _, v := range t.m.votes {
		if v.VoterID == voterID && v.ElectionID == electionID && v.PositionID == positionID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) HasCandidateVote(ctx context.Context, voterID, electionID, candidateID int) (bool, error) {
	for _, v := range t.m.votes {
		if v.VoterID == voterID && v.ElectionID == electionID && v.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertVote(ctx context.Context, v *vote.Vote) error {
	if t.m.insertErr != nil {
		if err := t.m.insertErr(v); err != nil {
			return err
		}
	}
	ok, _ := t.HasCandidateVote(ctx, v.VoterID, v.ElectionID, v.CandidateID)
	if ok {
		return vote.ErrDuplicateCandidateVote
	}
	t.m.votes = append(t.m.votes, *v)
	return nil
}

func (t *memTx) SetHasVoted(ctx context.Context, voterID int, hasVoted bool) error {
	if v, ok := t.m.voters[voterID]; ok {
		v.HasVoted = hasVoted
	}
	return nil
}

func (t *memTx) DeleteVoterVotes(ctx context.Context, voterID, electionID int) (int, error) {
	kept := t.m.votes[:0:0]
	removed := 0
	for _, v := range t.m.votes {
		if v.VoterID == voterID && v.ElectionID == electionID {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	t.m.votes = kept
	return removed, nil
}

func (t *memTx) DeleteElectionVotes(ctx context.Context, electionID int) (int, error) {
	kept := t.m.votes[:0:0]
	removed := 0
	for _, v := range t.m.votes {
		if v.ElectionID == electionID {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	t.m.votes = kept
	return removed, nil
}

func (t *memTx) ClearHasVoted(ctx context.Context) (int, error) {
	n := 0
	for _, v := range t.m.voters {
		if v.HasVoted {
			v.HasVoted = false
			n++
		}
	}
	return n, nil
}
