package course

import (
	"time"

	"github.com/uptrace/bun"
)

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name" validate:"required,max=160"`
	Code         string    `bun:"code,unique,notnull" json:"code" validate:"required,max=16"`
	DepartmentID int       `bun:"department_id,notnull" json:"departmentId" validate:"required,gt=0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

func (*Course) ForeignKeys() []string {
	return []string{`("department_id") REFERENCES "departments" ("id") ON DELETE CASCADE`}
}
