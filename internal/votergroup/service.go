package votergroup

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrGroupNotFound = errors.New("voter group not found")
	ErrGroupExists   = errors.New("voter group already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

type Service interface {
	CreateGroup(ctx context.Context, group *VoterGroup) error
	GetAllGroups(ctx context.Context) ([]VoterGroup, error)
	GetGroupByID(ctx context.Context, id int) (*VoterGroup, error)
	UpdateGroup(ctx context.Context, group *VoterGroup) error
	DeleteGroup(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateGroup(ctx context.Context, group *VoterGroup) error {
	group.Name = strings.TrimSpace(group.Name)
	return s.repo.Create(ctx, group)
}

func (s *service) GetAllGroups(ctx context.Context) ([]VoterGroup, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetGroupByID(ctx context.Context, id int) (*VoterGroup, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateGroup(ctx context.Context, group *VoterGroup) error {
	if group.ID <= 0 {
		return ErrInvalidInput
	}
	group.Name = strings.TrimSpace(group.Name)
	return s.repo.Update(ctx, group)
}

func (s *service) DeleteGroup(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
