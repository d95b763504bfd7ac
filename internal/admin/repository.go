package admin

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, admin *Admin) error
	GetAll(ctx context.Context) ([]Admin, error)
	GetByID(ctx context.Context, id int) (*Admin, error)
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	Update(ctx context.Context, admin *Admin, withPassword bool) error
	Delete(ctx context.Context, id int) error
	CountByRole(ctx context.Context, role string) (int, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, admin *Admin) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(admin).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "admins", time.Since(start), err)

	if db.IsUniqueViolation(err) {
		return ErrUsernameExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Admin, error) {
	start := time.Now()
	var admins []Admin
	err := r.db.NewSelect().Model(&admins).Order("username ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "admins", time.Since(start), err)

	return admins, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Admin, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *repository) getBy(ctx context.Context, where string, arg interface{}) (*Admin, error) {
	start := time.Now()
	admin := new(Admin)
	err := r.db.NewSelect().Model(admin).Where(where, arg).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "admins", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (r *repository) Update(ctx context.Context, admin *Admin, withPassword bool) error {
	columns := []string{"username", "email", "role"}
	if withPassword {
		columns = append(columns, "password")
	}

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(admin).
		Column(columns...).
		WherePK().
		Returning("*").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "admins", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrUsernameExists
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Admin{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "admins", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *repository) CountByRole(ctx context.Context, role string) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().Model((*Admin)(nil)).Where("role = ?", role).Count(ctx)
	r.metrics.Database.RecordQuery(ctx, "count", "admins", time.Since(start), err)

	return count, err
}
