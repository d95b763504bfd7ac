package candidate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrUnknownPosition   = errors.New("position does not exist")
	ErrCandidateHasVotes = errors.New("candidate has recorded votes")
	ErrPhotoTooLarge     = errors.New("photo exceeds the upload size limit")
	ErrUnsupportedPhoto  = errors.New("photo must be a JPEG, PNG or WebP image")
	ErrInvalidInput      = errors.New("invalid input")
)

type Service interface {
	CreateCandidate(ctx context.Context, candidate *Candidate) error
	GetAllCandidates(ctx context.Context, positionID int) ([]Candidate, error)
	GetCandidateByID(ctx context.Context, id int) (*Candidate, error)
	UpdateCandidate(ctx context.Context, candidate *Candidate) error
	DeleteCandidate(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, photo io.Reader) (*Candidate, error)
}

type service struct {
	repo   Repository
	photos *PhotoStore
	logger *slog.Logger
}

func NewService(repo Repository, photos *PhotoStore, logger *slog.Logger) Service {
	return &service{repo: repo, photos: photos, logger: logger}
}

func (s *service) CreateCandidate(ctx context.Context, candidate *Candidate) error {
	if err := normalize(candidate); err != nil {
		return err
	}
	candidate.PhotoPath = ""
	return s.repo.Create(ctx, candidate)
}

// GetAllCandidates lists every candidate, or only those running for
// positionID when it is non-zero.
func (s *service) GetAllCandidates(ctx context.Context, positionID int) ([]Candidate, error) {
	if positionID < 0 {
		return nil, ErrInvalidInput
	}
	if positionID > 0 {
		return s.repo.GetByPosition(ctx, positionID)
	}
	return s.repo.GetAll(ctx)
}

func (s *service) GetCandidateByID(ctx context.Context, id int) (*Candidate, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateCandidate(ctx context.Context, candidate *Candidate) error {
	if candidate.ID <= 0 {
		return ErrInvalidInput
	}
	if err := normalize(candidate); err != nil {
		return err
	}
	return s.repo.Update(ctx, candidate)
}

func (s *service) DeleteCandidate(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	candidate, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removePhoto(ctx, candidate.PhotoPath)
	return nil
}

func (s *service) UploadPhoto(ctx context.Context, id int, photo io.Reader) (*Candidate, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	candidate, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.photos.Save(photo)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPhoto(ctx, id, path); err != nil {
		s.removePhoto(ctx, path)
		return nil, err
	}

	s.removePhoto(ctx, candidate.PhotoPath)
	candidate.PhotoPath = path
	return candidate, nil
}

func (s *service) removePhoto(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.photos.Remove(path); err != nil {
		s.logger.WarnContext(ctx, "failed to remove candidate photo", "path", path, "error", err)
	}
}

func normalize(candidate *Candidate) error {
	candidate.FirstName = strings.TrimSpace(candidate.FirstName)
	candidate.LastName = strings.TrimSpace(candidate.LastName)
	candidate.Description = strings.TrimSpace(candidate.Description)
	if candidate.FirstName == "" || candidate.LastName == "" || candidate.PositionID <= 0 {
		return ErrInvalidInput
	}
	return nil
}
