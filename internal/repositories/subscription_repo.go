package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartforge/landing/internal/models"
)

const pgUniqueViolation = "23505"

var ErrDuplicateEmail = errors.New("email already subscribed")

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// Insert stores the address and fills ID and CreatedAt. The unique index on
// emails.email is the only duplicate check.
func (r *SubscriptionRepo) Insert(ctx context.Context, sub *models.EmailSubscription) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO emails (email)
		VALUES ($1)
		RETURNING id, created_at
	`, sub.Email).Scan(&sub.ID, &sub.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *SubscriptionRepo) List(ctx context.Context, limit, offset int) ([]models.EmailSubscription, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, created_at
		FROM emails
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.EmailSubscription
	for rows.Next() {
		var s models.EmailSubscription
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM emails`).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
