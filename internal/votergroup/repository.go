package votergroup

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, group *VoterGroup) error
	GetAll(ctx context.Context) ([]VoterGroup, error)
	GetByID(ctx context.Context, id int) (*VoterGroup, error)
	Update(ctx context.Context, group *VoterGroup) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, group *VoterGroup) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(group).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "voter_groups", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrGroupExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]VoterGroup, error) {
	start := time.Now()
	var groups []VoterGroup
	err := r.db.NewSelect().Model(&groups).Order("name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "voter_groups", time.Since(start), err)

	return groups, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*VoterGroup, error) {
	start := time.Now()
	group := new(VoterGroup)
	err := r.db.NewSelect().Model(group).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "voter_groups", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (r *repository) Update(ctx context.Context, group *VoterGroup) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(group).
		Column("name", "description").
		WherePK().
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "voter_groups", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrGroupExists
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&VoterGroup{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "voter_groups", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}
