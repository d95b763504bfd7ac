package candidate

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, candidate *Candidate) error
	GetAll(ctx context.Context) ([]Candidate, error)
	GetByPosition(ctx context.Context, positionID int) ([]Candidate, error)
	GetByID(ctx context.Context, id int) (*Candidate, error)
	Update(ctx context.Context, candidate *Candidate) error
	SetPhoto(ctx context.Context, id int, path string) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, candidate *Candidate) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(candidate).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "candidates", time.Since(start), err)

	if db.Classify(err) == db.KindForeignKey {
		return ErrUnknownPosition
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Candidate, error) {
	start := time.Now()
	var candidates []Candidate
	err := r.db.NewSelect().Model(&candidates).Order("position_id ASC", "id ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "candidates", time.Since(start), err)

	return candidates, err
}

func (r *repository) GetByPosition(ctx context.Context, positionID int) ([]Candidate, error) {
	start := time.Now()
	var candidates []Candidate
	err := r.db.NewSelect().
		Model(&candidates).
		Where("position_id = ?", positionID).
		Order("id ASC").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "candidates", time.Since(start), err)

	return candidates, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Candidate, error) {
	start := time.Now()
	candidate := new(Candidate)
	err := r.db.NewSelect().Model(candidate).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "candidates", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return candidate, nil
}

func (r *repository) Update(ctx context.Context, candidate *Candidate) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(candidate).
		Column("first_name", "last_name", "position_id", "description").
		WherePK().
		Returning("*").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "candidates", time.Since(start), err)

	if err != nil {
		if db.Classify(err) == db.KindForeignKey {
			return ErrUnknownPosition
		}
		return err
	}
	return expectOne(result)
}

func (r *repository) SetPhoto(ctx context.Context, id int, path string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Candidate)(nil)).
		Set("photo_path = ?", path).
		Where("id = ?", id).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "candidates", time.Since(start), err)

	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Candidate{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "candidates", time.Since(start), err)

	if err != nil {
		if db.Classify(err) == db.KindForeignKey {
			return ErrCandidateHasVotes
		}
		return err
	}
	return expectOne(result)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOne(result rowsAffecter) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}
