package position

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, position *Position) error
	GetAll(ctx context.Context) ([]Position, error)
	GetByID(ctx context.Context, id int) (*Position, error)
	Update(ctx context.Context, position *Position) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, position *Position) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(position).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "positions", time.Since(start), err)

	return translate(err)
}

func (r *repository) GetAll(ctx context.Context) ([]Position, error) {
	start := time.Now()
	var positions []Position
	err := r.db.NewSelect().Model(&positions).Order("display_order ASC", "id ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "positions", time.Since(start), err)

	return positions, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Position, error) {
	start := time.Now()
	position := new(Position)
	err := r.db.NewSelect().Model(position).Where("id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "positions", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return position, nil
}

func (r *repository) Update(ctx context.Context, position *Position) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(position).
		Column("name", "vote_limit", "display_order").
		WherePK().
		Returning("*").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "positions", time.Since(start), err)

	if err != nil {
		return translate(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Position{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "positions", time.Since(start), err)

	if err != nil {
		return translate(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func translate(err error) error {
	switch db.Classify(err) {
	case db.KindUnique:
		return ErrPositionExists
	case db.KindForeignKey:
		return ErrPositionInUse
	case db.KindCheck:
		return ErrInvalidInput
	}
	return err
}
