package voter

import (
	"time"

	"github.com/uptrace/bun"
)

type Voter struct {
	bun.BaseModel `bun:"table:voters,alias:v"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	StudentID    string    `bun:"student_id,unique,notnull" json:"studentId"`
	FirstName    string    `bun:"first_name,notnull" json:"firstName"`
	LastName     string    `bun:"last_name,notnull" json:"lastName"`
	Email        string    `bun:"email" json:"email,omitempty"`
	Password     string    `bun:"password,notnull" json:"-"` // bcrypt hash, never exposed
	CourseID     *int      `bun:"course_id" json:"courseId,omitempty"`
	VoterGroupID *int      `bun:"voter_group_id" json:"voterGroupId,omitempty"`
	HasVoted     bool      `bun:"has_voted,notnull,default:false" json:"hasVoted"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (*Voter) ForeignKeys() []string {
	return []string{
		`("course_id") REFERENCES "courses" ("id") ON DELETE SET NULL`,
		`("voter_group_id") REFERENCES "voter_groups" ("id") ON DELETE SET NULL`,
	}
}

func (v *Voter) FullName() string {
	return v.FirstName + " " + v.LastName
}

type CreateVoterRequest struct {
	StudentID    string `json:"studentId" validate:"required,studentid"`
	FirstName    string `json:"firstName" validate:"required,max=80"`
	LastName     string `json:"lastName" validate:"required,max=80"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	CourseID     *int   `json:"courseId" validate:"omitempty,gt=0"`
	VoterGroupID *int   `json:"voterGroupId" validate:"omitempty,gt=0"`
}

// UpdateVoterRequest replaces the profile; Password is only changed when set.
// hasVoted is not writable here, only the vote flow and admin reset touch it.
type UpdateVoterRequest struct {
	StudentID    string `json:"studentId" validate:"required,studentid"`
	FirstName    string `json:"firstName" validate:"required,max=80"`
	LastName     string `json:"lastName" validate:"required,max=80"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"omitempty,min=8,max=72"`
	CourseID     *int   `json:"courseId" validate:"omitempty,gt=0"`
	VoterGroupID *int   `json:"voterGroupId" validate:"omitempty,gt=0"`
}
