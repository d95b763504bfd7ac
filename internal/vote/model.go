package vote

import (
	"time"

	"github.com/uptrace/bun"
)

// Vote is one ballot mark. Rows are insert-only; only the admin resets
// delete them.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:vt"`

	ID          string    `bun:"id,pk,type:uuid" json:"id"`
	VoterID     int       `bun:"voter_id,notnull,unique:voter_election_candidate" json:"voterId"`
	ElectionID  int       `bun:"election_id,notnull,unique:voter_election_candidate" json:"electionId"`
	PositionID  int       `bun:"position_id,notnull" json:"positionId"`
	CandidateID int       `bun:"candidate_id,notnull,unique:voter_election_candidate" json:"candidateId"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

func (*Vote) ForeignKeys() []string {
	return []string{
		`("voter_id") REFERENCES "voters" ("id") ON DELETE RESTRICT`,
		`("election_id") REFERENCES "elections" ("id") ON DELETE CASCADE`,
		`("position_id") REFERENCES "positions" ("id") ON DELETE RESTRICT`,
		`("candidate_id") REFERENCES "candidates" ("id") ON DELETE RESTRICT`,
	}
}

var SchemaStatements = []string{
	`CREATE INDEX IF NOT EXISTS votes_voter_position ON votes (voter_id, election_id, position_id)`,
	`CREATE INDEX IF NOT EXISTS votes_election_candidate ON votes (election_id, candidate_id)`,
}

// SingleVote is one incremental submission. IsLastVote closes the voter's
// ballot once the row is recorded.
type SingleVote struct {
	VoterID     int  `json:"voterId"`
	ElectionID  int  `json:"electionId"`
	PositionID  int  `json:"positionId" validate:"required,gt=0"`
	CandidateID int  `json:"candidateId" validate:"required,gt=0"`
	IsLastVote  bool `json:"isLastVote"`
}

// BallotItem is one mark of a batch ballot. ElectionID 0 means the active
// election.
type BallotItem struct {
	ElectionID  int `json:"electionId" validate:"gte=0"`
	PositionID  int `json:"positionId" validate:"required,gt=0"`
	CandidateID int `json:"candidateId" validate:"required,gt=0"`
}

type BatchRequest struct {
	Votes []BallotItem `json:"votes" validate:"required,dive"`
}

type VoteReceipt struct {
	VoteID      string    `json:"voteId"`
	VoterID     int       `json:"voterId"`
	ElectionID  int       `json:"electionId"`
	PositionID  int       `json:"positionId"`
	CandidateID int       `json:"candidateId"`
	HasVoted    bool      `json:"hasVoted"`
	RecordedAt  time.Time `json:"recordedAt"`
}

type ItemStatus string

const (
	// ItemRecorded is committed.
	ItemRecorded ItemStatus = "recorded"
	// ItemValid passed validation but the batch was rolled back.
	ItemValid ItemStatus = "valid"
	// ItemRejected failed; Code and Error say why.
	ItemRejected ItemStatus = "rejected"
	// ItemNotProcessed was never reached because an earlier insert failed.
	ItemNotProcessed ItemStatus = "not_processed"
)

type ItemResult struct {
	Index       int        `json:"index"`
	PositionID  int        `json:"positionId"`
	CandidateID int        `json:"candidateId"`
	Status      ItemStatus `json:"status"`
	VoteID      string     `json:"voteId,omitempty"`
	Code        string     `json:"code,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchReceipt reports every item of a batch. Results follow processing
// order, which is (positionID, candidateID); Index is the item's position in
// the submitted list.
type BatchReceipt struct {
	VoterID    int          `json:"voterId"`
	ElectionID int          `json:"electionId"`
	Committed  bool         `json:"committed"`
	HasVoted   bool         `json:"hasVoted"`
	Results    []ItemResult `json:"results"`
	Summary    BatchSummary `json:"summary"`
}

// TallyRow is the vote count of one candidate in one election.
type TallyRow struct {
	PositionID    int    `bun:"position_id" json:"positionId"`
	PositionName  string `bun:"position_name" json:"positionName"`
	DisplayOrder  int    `bun:"display_order" json:"-"`
	VoteLimit     int    `bun:"vote_limit" json:"-"`
	CandidateID   int    `bun:"candidate_id" json:"candidateId"`
	CandidateName string `bun:"candidate_name" json:"candidateName"`
	VoteCount     int    `bun:"vote_count" json:"voteCount"`
}

type CandidateResult struct {
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	VoteCount     int    `json:"voteCount"`
}

type PositionResult struct {
	PositionID   int               `json:"positionId"`
	PositionName string            `json:"positionName"`
	VoteLimit    int               `json:"voteLimit"`
	TotalVotes   int               `json:"totalVotes"`
	Candidates   []CandidateResult `json:"candidates"`
}

type Results struct {
	ElectionID    int              `json:"electionId"`
	ElectionTitle string           `json:"electionTitle"`
	Status        string           `json:"status"`
	Positions     []PositionResult `json:"positions"`
}
