package candidate

import (
	"time"

	"github.com/uptrace/bun"
)

type Candidate struct {
	bun.BaseModel `bun:"table:candidates,alias:c"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	FirstName   string    `bun:"first_name,notnull" json:"firstName" validate:"required,max=80"`
	LastName    string    `bun:"last_name,notnull" json:"lastName" validate:"required,max=80"`
	PositionID  int       `bun:"position_id,notnull" json:"positionId" validate:"required,gt=0"`
	PhotoPath   string    `bun:"photo_path" json:"photoPath,omitempty" validate:"-"`
	Description string    `bun:"description" json:"description,omitempty" validate:"max=2000"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

func (*Candidate) ForeignKeys() []string {
	return []string{`("position_id") REFERENCES "positions" ("id") ON DELETE RESTRICT`}
}

func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}
