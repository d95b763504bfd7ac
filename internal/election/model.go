package election

import (
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
	StatusEnded   Status = "ended"
)

type Election struct {
	bun.BaseModel `bun:"table:elections,alias:e"`

	ID          int        `bun:"id,pk,autoincrement" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description,omitempty"`
	StartAt     *time.Time `bun:"start_at" json:"startAt,omitempty"`
	EndAt       *time.Time `bun:"end_at" json:"endAt,omitempty"`
	Status      Status     `bun:"status,notnull,default:'pending'" json:"status"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (e *Election) IsActive() bool {
	return e.Status == StatusActive
}

// IsOpen reports whether voters' has_voted flags belong to this election.
// At most one election is open at a time.
func (e *Election) IsOpen() bool {
	return e.Status != StatusEnded
}

// ElectionCandidate links a candidate to the ballot of one election.
type ElectionCandidate struct {
	bun.BaseModel `bun:"table:election_candidates,alias:ec"`

	ElectionID  int `bun:"election_id,pk" json:"electionId"`
	CandidateID int `bun:"candidate_id,pk" json:"candidateId"`
}

func (*ElectionCandidate) ForeignKeys() []string {
	return []string{
		`("election_id") REFERENCES "elections" ("id") ON DELETE CASCADE`,
		`("candidate_id") REFERENCES "candidates" ("id") ON DELETE CASCADE`,
	}
}

// SchemaStatements allows at most one election that is not ended.
var SchemaStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS elections_single_open ON elections ((true)) WHERE status <> 'ended'`,
}

type CreateElectionRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
}

type UpdateElectionRequest = CreateElectionRequest

type LinkCandidateRequest struct {
	CandidateID int `json:"candidateId" validate:"required,gt=0"`
}
