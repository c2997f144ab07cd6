package postgres

import (
	"context"
	"errors"
	"fmt"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const movementColumns = `id, kind, source_id, destination_id, amount, fee, status, description, payment_method_id, created_at`

// MovementRepo implements ports.MovementRepository: the append-only movement
// log. The primary key on id is the authoritative idempotency constraint.
type MovementRepo struct {
	pool Pool
}

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(pool Pool) *MovementRepo {
	return &MovementRepo{pool: pool}
}

// Create appends a movement within a database transaction. Reusing an id
// returns domain.ErrDuplicateMovementID.
func (r *MovementRepo) Create(ctx context.Context, tx pgx.Tx, m *domain.Movement) error {
	query := `INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.Kind, m.SourceID, m.DestinationID,
		m.Amount, m.Fee, m.Status, m.Description, m.PaymentMethodID,
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateMovementID
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID fetches a movement by its identifier.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`

	m := &domain.Movement{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Kind, &m.SourceID, &m.DestinationID,
		&m.Amount, &m.Fee, &m.Status, &m.Description, &m.PaymentMethodID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement by id: %w", err)
	}
	return m, nil
}

// ListByAccount fetches movements where the account is source or
// destination, most recent first.
func (r *MovementRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements
		WHERE source_id = $1 OR destination_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		var m domain.Movement
		if err := rows.Scan(
			&m.ID, &m.Kind, &m.SourceID, &m.DestinationID,
			&m.Amount, &m.Fee, &m.Status, &m.Description, &m.PaymentMethodID,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}
