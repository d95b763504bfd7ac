package department

import (
	"time"

	"github.com/uptrace/bun"
)

type Department struct {
	bun.BaseModel `bun:"table:departments,alias:d"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,unique,notnull" json:"name" validate:"required,max=120"`
	Code      string    `bun:"code,unique,notnull" json:"code" validate:"required,max=16"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
