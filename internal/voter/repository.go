package voter

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, voter *Voter) error
	GetAll(ctx context.Context) ([]Voter, error)
	GetByGroup(ctx context.Context, groupID int) ([]Voter, error)
	GetByID(ctx context.Context, id int) (*Voter, error)
	GetByStudentID(ctx context.Context, studentID string) (*Voter, error)
	Update(ctx context.Context, voter *Voter, withPassword bool) error
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, voter *Voter) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(voter).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "voters", time.Since(start), err)

	return translate(err)
}

func (r *repository) GetAll(ctx context.Context) ([]Voter, error) {
	start := time.Now()
	var voters []Voter
	err := r.db.NewSelect().Model(&voters).Order("student_id ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "voters", time.Since(start), err)

	return voters, err
}

func (r *repository) GetByGroup(ctx context.Context, groupID int) ([]Voter, error) {
	start := time.Now()
	var voters []Voter
	err := r.db.NewSelect().
		Model(&voters).
		Where("voter_group_id = ?", groupID).
		Order("student_id ASC").
		Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "voters", time.Since(start), err)

	return voters, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Voter, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *repository) GetByStudentID(ctx context.Context, studentID string) (*Voter, error) {
	return r.getBy(ctx, "student_id = ?", studentID)
}

func (r *repository) getBy(ctx context.Context, where string, arg interface{}) (*Voter, error) {
	start := time.Now()
	voter := new(Voter)
	err := r.db.NewSelect().Model(voter).Where(where, arg).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "voters", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrVoterNotFound
		}
		return nil, err
	}
	return voter, nil
}

func (r *repository) Update(ctx context.Context, voter *Voter, withPassword bool) error {
	columns := []string{"student_id", "first_name", "last_name", "email", "course_id", "voter_group_id"}
	if withPassword {
		columns = append(columns, "password")
	}

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(voter).
		Column(columns...).
		Set("updated_at = current_timestamp").
		WherePK().
		Returning("*").
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "voters", time.Since(start), err)

	if err != nil {
		return translate(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrVoterNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&Voter{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "voters", time.Since(start), err)

	if err != nil {
		if db.Classify(err) == db.KindForeignKey {
			return ErrVoterHasVotes
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrVoterNotFound
	}
	return nil
}

func translate(err error) error {
	switch db.Classify(err) {
	case db.KindUnique:
		return ErrStudentIDExists
	case db.KindForeignKey:
		return ErrUnknownReference
	}
	return err
}
