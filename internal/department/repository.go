package department

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, department *Department) error
	GetAll(ctx context.Context) ([]Department, error)
	GetByID(ctx context.Context, id int) (*Department, error)
	Update(ctx context.Context, department *Department) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, department *Department) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(department).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "departments", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrDepartmentExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Department, error) {
	start := time.Now()
	var departments []Department
	err := r.db.NewSelect().Model(&departments).Order("name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "departments", time.Since(start), err)

	return departments, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Department, error) {
	start := time.Now()
	department := new(Department)
	err := r.db.NewSelect().Model(department).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "departments", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return department, nil
}

func (r *repository) Update(ctx context.Context, department *Department) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(department).
		Column("name", "code").
		WherePK().
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "departments", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDepartmentExists
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Department{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "departments", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
