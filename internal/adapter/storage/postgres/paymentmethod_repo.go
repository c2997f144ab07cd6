package postgres

import (
	"context"
	"errors"
	"fmt"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentMethodColumns = `id, account_id, card_number_enc, last4, holder_name, expiry_month, expiry_year, card_type, active, created_at`

// PaymentMethodRepo implements ports.PaymentMethodRepository. Card numbers
// are stored encrypted; the repo never sees plaintext.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

// Create inserts a new payment method.
func (r *PaymentMethodRepo) Create(ctx context.Context, m *domain.PaymentMethod) error {
	query := `INSERT INTO payment_methods (` + paymentMethodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.AccountID, m.CardNumberEnc, m.Last4, m.HolderName,
		m.ExpiryMonth, m.ExpiryYear, m.CardType, m.Active, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// GetByID fetches a payment method by its UUID.
func (r *PaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE id = $1`

	m := &domain.PaymentMethod{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.AccountID, &m.CardNumberEnc, &m.Last4, &m.HolderName,
		&m.ExpiryMonth, &m.ExpiryYear, &m.CardType, &m.Active, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return m, nil
}

// ListByAccount fetches the account's payment methods, newest first.
func (r *PaymentMethodRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods
		WHERE account_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(
			&m.ID, &m.AccountID, &m.CardNumberEnc, &m.Last4, &m.HolderName,
			&m.ExpiryMonth, &m.ExpiryYear, &m.CardType, &m.Active, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}
	return methods, nil
}

// Deactivate marks a payment method inactive.
func (r *PaymentMethodRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payment_methods SET active = FALSE WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment method not found: %s", id)
	}
	return nil
}
