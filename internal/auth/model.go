package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// RefreshToken is a single-use token exchanged for a new access token.
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`

	ID          int       `bun:"id,pk,autoincrement"`
	PrincipalID int       `bun:"principal_id,notnull"`
	Role        Role      `bun:"role,notnull"`
	Token       string    `bun:"token,unique,notnull"`
	ExpiresAt   time.Time `bun:"expires_at,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

var SchemaStatements = []string{
	`CREATE INDEX IF NOT EXISTS refresh_tokens_principal ON refresh_tokens (role, principal_id)`,
}

type VoterLoginRequest struct {
	StudentID string `json:"studentId" validate:"required,studentid"`
	Password  string `json:"password" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Principal    Principal `json:"principal"`
}

// Profile is returned by /api/me.
type Profile struct {
	Principal
	StudentID string `json:"studentId,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	HasVoted  *bool  `json:"hasVoted,omitempty"`
}
