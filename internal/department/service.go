package department

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("department name or code already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

type Service interface {
	CreateDepartment(ctx context.Context, department *Department) error
	GetAllDepartments(ctx context.Context) ([]Department, error)
	GetDepartmentByID(ctx context.Context, id int) (*Department, error)
	UpdateDepartment(ctx context.Context, department *Department) error
	DeleteDepartment(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateDepartment(ctx context.Context, department *Department) error {
	normalize(department)
	return s.repo.Create(ctx, department)
}

func (s *service) GetAllDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetDepartmentByID(ctx context.Context, id int) (*Department, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateDepartment(ctx context.Context, department *Department) error {
	if department.ID <= 0 {
		return ErrInvalidInput
	}
	normalize(department)
	return s.repo.Update(ctx, department)
}

func (s *service) DeleteDepartment(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func normalize(d *Department) {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
}
