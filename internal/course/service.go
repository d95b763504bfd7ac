package course

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseExists      = errors.New("course code already exists")
	ErrUnknownDepartment = errors.New("department does not exist")
	ErrInvalidInput      = errors.New("invalid input")
)

type Service interface {
	CreateCourse(ctx context.Context, course *Course) error
	GetAllCourses(ctx context.Context) ([]Course, error)
	GetDepartmentCourses(ctx context.Context, departmentID int) ([]Course, error)
	GetCourseByID(ctx context.Context, id int) (*Course, error)
	UpdateCourse(ctx context.Context, course *Course) error
	DeleteCourse(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCourse(ctx context.Context, course *Course) error {
	course.Name = strings.TrimSpace(course.Name)
	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	return s.repo.Create(ctx, course)
}

func (s *service) GetAllCourses(ctx context.Context) ([]Course, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetDepartmentCourses(ctx context.Context, departmentID int) ([]Course, error) {
	if departmentID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByDepartment(ctx, departmentID)
}

func (s *service) GetCourseByID(ctx context.Context, id int) (*Course, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateCourse(ctx context.Context, course *Course) error {
	if course.ID <= 0 {
		return ErrInvalidInput
	}
	course.Name = strings.TrimSpace(course.Name)
	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	return s.repo.Update(ctx, course)
}

func (s *service) DeleteCourse(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
