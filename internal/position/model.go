package position

import (
	"time"

	"github.com/uptrace/bun"
)

type Position struct {
	bun.BaseModel `bun:"table:positions,alias:p"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,unique,notnull" json:"name" validate:"required,max=80"`
	VoteLimit    int       `bun:"vote_limit,notnull,default:1" json:"voteLimit" validate:"required,gte=1,lte=100"`
	DisplayOrder int       `bun:"display_order,notnull,default:0" json:"displayOrder" validate:"gte=0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// SchemaStatements backs the validate tag with a CHECK so a bad row can't be
// written around the API.
var SchemaStatements = []string{
	`ALTER TABLE positions DROP CONSTRAINT IF EXISTS positions_vote_limit_check`,
	`ALTER TABLE positions ADD CONSTRAINT positions_vote_limit_check CHECK (vote_limit >= 1)`,
}
