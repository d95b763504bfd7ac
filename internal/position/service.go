package position

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionExists   = errors.New("position name already exists")
	ErrPositionInUse    = errors.New("position still has candidates or votes")
	ErrInvalidInput     = errors.New("invalid input")
)

type Service interface {
	CreatePosition(ctx context.Context, position *Position) error
	GetAllPositions(ctx context.Context) ([]Position, error)
	GetPositionByID(ctx context.Context, id int) (*Position, error)
	UpdatePosition(ctx context.Context, position *Position) error
	DeletePosition(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePosition(ctx context.Context, position *Position) error {
	if err := check(position); err != nil {
		return err
	}
	return s.repo.Create(ctx, position)
}

func (s *service) GetAllPositions(ctx context.Context) ([]Position, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetPositionByID(ctx context.Context, id int) (*Position, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdatePosition(ctx context.Context, position *Position) error {
	if position.ID <= 0 {
		return ErrInvalidInput
	}
	if err := check(position); err != nil {
		return err
	}
	return s.repo.Update(ctx, position)
}

func (s *service) DeletePosition(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func check(position *Position) error {
	position.Name = strings.TrimSpace(position.Name)
	if position.Name == "" || position.VoteLimit < 1 || position.DisplayOrder < 0 {
		return ErrInvalidInput
	}
	return nil
}
