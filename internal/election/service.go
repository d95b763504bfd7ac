package election

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"election-service/internal/candidate"
	"election-service/internal/events"
	"election-service/internal/metrics"
)

var (
	ErrElectionNotFound       = errors.New("election not found")
	ErrNoActiveElection       = errors.New("no active election")
	ErrElectionExists         = errors.New("another election is still open; end it first")
	ErrElectionLocked         = errors.New("only pending elections can be edited")
	ErrElectionActive         = errors.New("active elections cannot be deleted")
	ErrInvalidTransition      = errors.New("invalid election status transition")
	ErrUnknownCandidate       = errors.New("candidate does not exist")
	ErrCandidateAlreadyLinked = errors.New("candidate is already on this ballot")
	ErrCandidateNotLinked     = errors.New("candidate is not on this ballot")
	ErrInvalidInput           = errors.New("invalid input")
)

type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
	ActionEnd    Action = "end"
)

// nextStatus is the election lifecycle:
//
//	start:  pending -> active
//	pause:  active -> paused
//	resume: paused|stopped -> active
//	stop:   active|paused -> stopped
//	end:    anything but ended -> ended
func nextStatus(current Status, action Action) (Status, error) {
	switch action {
	case ActionStart:
		if current == StatusPending {
			return StatusActive, nil
		}
	case ActionPause:
		if current == StatusActive {
			return StatusPaused, nil
		}
	case ActionResume:
		if current == StatusPaused || current == StatusStopped {
			return StatusActive, nil
		}
	case ActionStop:
		if current == StatusActive || current == StatusPaused {
			return StatusStopped, nil
		}
	case ActionEnd:
		if current != StatusEnded {
			return StatusEnded, nil
		}
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	return "", fmt.Errorf("%w: cannot %s a %s election", ErrInvalidTransition, action, current)
}

type Service interface {
	CreateElection(ctx context.Context, req CreateElectionRequest) (*Election, error)
	GetAllElections(ctx context.Context) ([]Election, error)
	GetElectionByID(ctx context.Context, id int) (*Election, error)
	GetActiveElection(ctx context.Context) (*Election, error)
	UpdateElection(ctx context.Context, id int, req UpdateElectionRequest) (*Election, error)
	DeleteElection(ctx context.Context, id int) error
	ChangeStatus(ctx context.Context, id int, action Action) (*Election, error)

	GetCandidates(ctx context.Context, id int) ([]candidate.Candidate, error)
	LinkCandidate(ctx context.Context, id, candidateID int) error
	UnlinkCandidate(ctx context.Context, id, candidateID int) error
}

type service struct {
	repo    Repository
	events  *events.Emitter
	metrics *metrics.Metrics
}

func NewService(repo Repository, emitter *events.Emitter, m *metrics.Metrics) Service {
	return &service{repo: repo, events: emitter, metrics: m}
}

func (s *service) CreateElection(ctx context.Context, req CreateElectionRequest) (*Election, error) {
	election, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	election.Status = StatusPending

	if err := s.repo.Create(ctx, election); err != nil {
		return nil, err
	}
	return election, nil
}

func (s *service) GetAllElections(ctx context.Context) ([]Election, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetElectionByID(ctx context.Context, id int) (*Election, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetActiveElection(ctx context.Context) (*Election, error) {
	return s.repo.GetActive(ctx)
}

func (s *service) UpdateElection(ctx context.Context, id int, req UpdateElectionRequest) (*Election, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	election, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	election.ID = id

	if err := s.repo.Update(ctx, election); err != nil {
		return nil, err
	}
	return election, nil
}

func (s *service) DeleteElection(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// ChangeStatus applies action under a row lock. Starting an election also
// clears every voter's has_voted flag in the same transaction.
func (s *service) ChangeStatus(ctx context.Context, id int, action Action) (*Election, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}

	var previous Status
	election, err := s.repo.Transition(ctx, id, func(e *Election) (bool, error) {
		next, err := nextStatus(e.Status, action)
		if err != nil {
			return false, err
		}
		previous = e.Status
		e.Status = next
		return action == ActionStart, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordElectionTransition(ctx, string(election.Status))
	s.events.Emit(ctx, events.Event{
		Type:       events.TypeElectionStatusChanged,
		ElectionID: election.ID,
		Data: map[string]string{
			"action": string(action),
			"from":   string(previous),
			"to":     string(election.Status),
		},
	})
	return election, nil
}

func (s *service) GetCandidates(ctx context.Context, id int) ([]candidate.Candidate, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Candidates(ctx, id)
}

func (s *service) LinkCandidate(ctx context.Context, id, candidateID int) error {
	if id <= 0 || candidateID <= 0 {
		return ErrInvalidInput
	}
	election, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if election.Status == StatusEnded {
		return ErrElectionLocked
	}
	return s.repo.LinkCandidate(ctx, id, candidateID)
}

func (s *service) UnlinkCandidate(ctx context.Context, id, candidateID int) error {
	if id <= 0 || candidateID <= 0 {
		return ErrInvalidInput
	}
	election, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if election.Status != StatusPending {
		return ErrElectionLocked
	}
	return s.repo.UnlinkCandidate(ctx, id, candidateID)
}

func fromRequest(req CreateElectionRequest) (*Election, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
		return nil, fmt.Errorf("%w: endAt must be after startAt", ErrInvalidInput)
	}
	return &Election{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	}, nil
}
