package votergroup

import (
	"time"

	"github.com/uptrace/bun"
)

// VoterGroup is an administrative cohort of voters (a year level, a
// residence hall, a society) used to organise the roster.
type VoterGroup struct {
	bun.BaseModel `bun:"table:voter_groups,alias:vg"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,unique,notnull" json:"name" validate:"required,max=120"`
	Description string    `bun:"description" json:"description" validate:"max=500"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
