package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"election-service/internal/admin"
	"election-service/internal/metrics"
	"election-service/internal/voter"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrPrincipalGone       = errors.New("account no longer exists")
)

// VoterLookup is the part of the voter repository auth needs.
type VoterLookup interface {
	GetByID(ctx context.Context, id int) (*voter.Voter, error)
	GetByStudentID(ctx context.Context, studentID string) (*voter.Voter, error)
}

// AdminLookup is the part of the admin repository auth needs.
type AdminLookup interface {
	GetByID(ctx context.Context, id int) (*admin.Admin, error)
	GetByUsername(ctx context.Context, username string) (*admin.Admin, error)
}

type Service struct {
	repo       Repository
	voters     VoterLookup
	admins     AdminLookup
	tokens     *TokenManager
	refreshTTL time.Duration
	metrics    *metrics.Metrics
}

func NewService(repo Repository, voters VoterLookup, admins AdminLookup, tokens *TokenManager, refreshTTL time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		repo:       repo,
		voters:     voters,
		admins:     admins,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		metrics:    m,
	}
}

func (s *Service) VoterLogin(ctx context.Context, req VoterLoginRequest) (*AuthResponse, error) {
	v, err := s.voters.GetByStudentID(ctx, strings.TrimSpace(req.StudentID))
	if err != nil {
		if errors.Is(err, voter.ErrVoterNotFound) {
			s.metrics.RecordLogin(ctx, string(RoleVoter), false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.Password), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(ctx, string(RoleVoter), false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(ctx, string(RoleVoter), true)
	return s.issue(ctx, Principal{ID: v.ID, Role: RoleVoter, Name: v.FullName()})
}

func (s *Service) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AuthResponse, error) {
	a, err := s.admins.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, admin.ErrAdminNotFound) {
			s.metrics.RecordLogin(ctx, string(RoleAdmin), false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(ctx, string(RoleAdmin), false)
		return nil, ErrInvalidCredentials
	}

	role := Role(a.Role)
	if !role.Valid() || role == RoleVoter {
		return nil, fmt.Errorf("admin %d has unknown role %q", a.ID, a.Role)
	}
	s.metrics.RecordLogin(ctx, string(role), true)
	return s.issue(ctx, Principal{ID: a.ID, Role: role, Name: a.Username})
}

// Refresh rotates the refresh token and issues a new access token. The
// principal is reloaded so a deleted account or changed role takes effect.
func (s *Service) Refresh(ctx context.Context, token string) (*AuthResponse, error) {
	stored, err := s.repo.ConsumeRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}

	principal, err := s.load(ctx, stored.Role, stored.PrincipalID)
	if err != nil {
		if errors.Is(err, ErrPrincipalGone) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return s.issue(ctx, principal)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, token)
}

// Me returns the caller's current profile.
func (s *Service) Me(ctx context.Context, p Principal) (*Profile, error) {
	switch p.Role {
	case RoleVoter:
		v, err := s.voters.GetByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, voter.ErrVoterNotFound) {
				return nil, ErrPrincipalGone
			}
			return nil, err
		}
		hasVoted := v.HasVoted
		return &Profile{Principal: p, StudentID: v.StudentID, Email: v.Email, HasVoted: &hasVoted}, nil
	default:
		a, err := s.admins.GetByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, admin.ErrAdminNotFound) {
				return nil, ErrPrincipalGone
			}
			return nil, err
		}
		p.Role = Role(a.Role)
		return &Profile{Principal: p, Username: a.Username, Email: a.Email}, nil
	}
}

func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	return s.repo.DeleteExpiredTokens(ctx)
}

func (s *Service) load(ctx context.Context, role Role, id int) (Principal, error) {
	if role == RoleVoter {
		v, err := s.voters.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, voter.ErrVoterNotFound) {
				return Principal{}, ErrPrincipalGone
			}
			return Principal{}, err
		}
		return Principal{ID: v.ID, Role: RoleVoter, Name: v.FullName()}, nil
	}

	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, admin.ErrAdminNotFound) {
			return Principal{}, ErrPrincipalGone
		}
		return Principal{}, err
	}
	return Principal{ID: a.ID, Role: Role(a.Role), Name: a.Username}, nil
}

func (s *Service) issue(ctx context.Context, p Principal) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.Issue(p)
	if err != nil {
		return nil, err
	}

	refresh := &RefreshToken{
		PrincipalID: p.ID,
		Role:        p.Role,
		Token:       uuid.NewString(),
		ExpiresAt:   time.Now().Add(s.refreshTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresAt:    expiresAt,
		Principal:    p,
	}, nil
}
