package admin

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Username  string    `bun:"username,unique,notnull" json:"username"`
	Email     string    `bun:"email" json:"email,omitempty"`
	Password  string    `bun:"password,notnull" json:"-"`
	Role      string    `bun:"role,notnull,default:'admin'" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin superadmin"`
}

type UpdateAdminRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin superadmin"`
}
