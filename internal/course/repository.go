package course

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetAll(ctx context.Context) ([]Course, error)
	GetByDepartment(ctx context.Context, departmentID int) ([]Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, course *Course) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	return translate(err)
}

func (r *repository) GetAll(ctx context.Context) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().Model(&courses).Order("name ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	return courses, err
}

func (r *repository) GetByDepartment(ctx context.Context, departmentID int) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().
		Model(&courses).
		Where("department_id = ?", departmentID).
		Order("name ASC").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	return courses, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) Update(ctx context.Context, course *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(course).
		Column("name", "code", "department_id").
		WherePK().
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "courses", time.Since(start), err)

	if err != nil {
		return translate(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Course{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "courses", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func translate(err error) error {
	switch db.Classify(err) {
	case db.KindUnique:
		return ErrCourseExists
	case db.KindForeignKey:
		return ErrUnknownDepartment
	}
	return err
}
