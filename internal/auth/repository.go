package auth

import (
	"context"
	"time"

	"election-service/internal/db"
	"election-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error
	// ConsumeRefreshToken deletes the token and returns it when it exists and
	// has not expired. A token can be consumed once.
	ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeletePrincipalTokens(ctx context.Context, role Role, principalID int) error
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(token).Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

func (r *repository) ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := new(RefreshToken)
	_, err := r.db.NewDelete().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Returning("*").
		Exec(ctx, refreshToken)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if refreshToken.ID == 0 {
		return nil, ErrInvalidRefreshToken
	}
	return refreshToken, nil
}

func (r *repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

func (r *repository) DeletePrincipalTokens(ctx context.Context, role Role, principalID int) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("role = ?", role).
		Where("principal_id = ?", principalID).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteExpiredTokens removes all expired refresh tokens (cleanup).
func (r *repository) DeleteExpiredTokens(ctx context.Context) (int, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
