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

const loanColumns = `id, business_id, amount, term_months, purpose, status, decided_at, created_at`

// LoanRepo implements ports.LoanRepository.
type LoanRepo struct {
	pool Pool
}

// NewLoanRepo creates a new LoanRepo.
func NewLoanRepo(pool Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Create inserts a new loan application.
func (r *LoanRepo) Create(ctx context.Context, l *domain.LoanApplication) error {
	query := `INSERT INTO loan_applications (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.BusinessID, l.Amount, l.TermMonths, l.Purpose,
		l.Status, l.DecidedAt, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan application: %w", err)
	}
	return nil
}

// GetByID fetches a loan application by its identifier.
func (r *LoanRepo) GetByID(ctx context.Context, id string) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE id = $1`

	l := &domain.LoanApplication{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.BusinessID, &l.Amount, &l.TermMonths, &l.Purpose,
		&l.Status, &l.DecidedAt, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loan application: %w", err)
	}
	return l, nil
}

// UpdateStatus records the decision on a loan application.
func (r *LoanRepo) UpdateStatus(ctx context.Context, id string, status domain.LoanStatus, decidedAt time.Time) error {
	query := `UPDATE loan_applications SET status = $1, decided_at = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, status, decidedAt, id)
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan application not found: %s", id)
	}
	return nil
}

// ListByBusiness fetches the business's applications, most recent first.
func (r *LoanRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications
		WHERE business_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loan applications: %w", err)
	}
	defer rows.Close()

	var loans []domain.LoanApplication
	for rows.Next() {
		var l domain.LoanApplication
		if err := rows.Scan(
			&l.ID, &l.BusinessID, &l.Amount, &l.TermMonths, &l.Purpose,
			&l.Status, &l.DecidedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan loan application: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loan applications: %w", err)
	}
	return loans, nil
}
