package voter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrVoterNotFound    = errors.New("voter not found")
	ErrStudentIDExists  = errors.New("student ID already registered")
	ErrUnknownReference = errors.New("course or voter group does not exist")
	ErrVoterHasVotes    = errors.New("voter has recorded votes; reset them first")
	ErrInvalidInput     = errors.New("invalid input")
)

type Service interface {
	CreateVoter(ctx context.Context, req CreateVoterRequest) (*Voter, error)
	GetAllVoters(ctx context.Context) ([]Voter, error)
	GetGroupVoters(ctx context.Context, groupID int) ([]Voter, error)
	GetVoterByID(ctx context.Context, id int) (*Voter, error)
	UpdateVoter(ctx context.Context, id int, req UpdateVoterRequest) (*Voter, error)
	DeleteVoter(ctx context.Context, id int) error
}

type service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository) Service {
	return &service{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

// NewServiceWithCost lets tests use bcrypt.MinCost.
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, bcryptCost: cost}
}

func (s *service) CreateVoter(ctx context.Context, req CreateVoterRequest) (*Voter, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash voter password: %w", err)
	}

	voter := &Voter{
		StudentID:    strings.TrimSpace(req.StudentID),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Password:     string(hashed),
		CourseID:     req.CourseID,
		VoterGroupID: req.VoterGroupID,
	}
	if err := s.repo.Create(ctx, voter); err != nil {
		return nil, err
	}
	return voter, nil
}

func (s *service) GetAllVoters(ctx context.Context) ([]Voter, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetGroupVoters(ctx context.Context, groupID int) ([]Voter, error) {
	if groupID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByGroup(ctx, groupID)
}

func (s *service) GetVoterByID(ctx context.Context, id int) (*Voter, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateVoter(ctx context.Context, id int, req UpdateVoterRequest) (*Voter, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	voter := &Voter{
		ID:           id,
		StudentID:    strings.TrimSpace(req.StudentID),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		CourseID:     req.CourseID,
		VoterGroupID: req.VoterGroupID,
	}
	withPassword := req.Password != ""
	if withPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash voter password: %w", err)
		}
		voter.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, voter, withPassword); err != nil {
		return nil, err
	}
	return voter, nil
}

func (s *service) DeleteVoter(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
