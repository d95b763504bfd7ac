package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminNotFound  = errors.New("admin not found")
	ErrUsernameExists = errors.New("username already taken")
	ErrLastSuperAdmin = errors.New("cannot remove the last superadmin")
	ErrInvalidInput   = errors.New("invalid input")
)

type Service interface {
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*Admin, error)
	GetAllAdmins(ctx context.Context) ([]Admin, error)
	GetAdminByID(ctx context.Context, id int) (*Admin, error)
	UpdateAdmin(ctx context.Context, id int, req UpdateAdminRequest) (*Admin, error)
	DeleteAdmin(ctx context.Context, id int) error
}

type service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository) Service {
	return &service{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, bcryptCost: cost}
}

func (s *service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleAdmin
	}
	admin := &Admin{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     role,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *service) GetAllAdmins(ctx context.Context) ([]Admin, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetAdminByID(ctx context.Context, id int) (*Admin, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateAdmin(ctx context.Context, id int, req UpdateAdminRequest) (*Admin, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Role == RoleSuperAdmin && req.Role != RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}

	admin := &Admin{
		ID:       id,
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     req.Role,
	}
	withPassword := req.Password != ""
	if withPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		admin.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, admin, withPassword); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *service) DeleteAdmin(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Role == RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ensureAnotherSuperAdmin(ctx context.Context) error {
	count, err := s.repo.CountByRole(ctx, RoleSuperAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}
