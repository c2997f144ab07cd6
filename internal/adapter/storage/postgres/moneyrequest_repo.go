package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const moneyRequestColumns = `id, requester_id, payer_id, amount, status, description, expires_at, created_at, updated_at`

// MoneyRequestRepo implements ports.MoneyRequestRepository.
type MoneyRequestRepo struct {
	pool Pool
}

// NewMoneyRequestRepo creates a new MoneyRequestRepo.
func NewMoneyRequestRepo(pool Pool) *MoneyRequestRepo {
	return &MoneyRequestRepo{pool: pool}
}

// Create inserts a new money request.
func (r *MoneyRequestRepo) Create(ctx context.Context, req *domain.MoneyRequest) error {
	query := `INSERT INTO money_requests (` + moneyRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.RequesterID, req.PayerID, req.Amount, req.Status,
		req.Description, req.ExpiresAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert money request: %w", err)
	}
	return nil
}

// GetByID fetches a money request by its identifier.
func (r *MoneyRequestRepo) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	query := `SELECT ` + moneyRequestColumns + ` FROM money_requests WHERE id = $1`

	req := &domain.MoneyRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequesterID, &req.PayerID, &req.Amount, &req.Status,
		&req.Description, &req.ExpiresAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get money request: %w", err)
	}
	return req, nil
}

// UpdateStatus moves a request to a new lifecycle state.
func (r *MoneyRequestRepo) UpdateStatus(ctx context.Context, id string, status domain.MoneyRequestStatus) error {
	query := `UPDATE money_requests SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update money request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("money request not found: %s", id)
	}
	return nil
}

// ListByAccount fetches requests where the account is requester or payer,
// most recent first.
func (r *MoneyRequestRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.MoneyRequest, error) {
	query := `SELECT ` + moneyRequestColumns + ` FROM money_requests
		WHERE requester_id = $1 OR payer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list money requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.MoneyRequest
	for rows.Next() {
		var req domain.MoneyRequest
		if err := rows.Scan(
			&req.ID, &req.RequesterID, &req.PayerID, &req.Amount, &req.Status,
			&req.Description, &req.ExpiresAt, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan money request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate money requests: %w", err)
	}
	return requests, nil
}

// ExpirePending flips every pending request past its expiry to EXPIRED.
func (r *MoneyRequestRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE money_requests SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'PENDING' AND expires_at < $1`

	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire money requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
