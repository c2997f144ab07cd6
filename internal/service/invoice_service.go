package service

import (
	"context"
	"fmt"
	"time"

	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvoiceServiceImpl implements ports.InvoiceService. Settlement goes through
// the ledger engine as a PAYMENT movement; the invoice record itself never
// touches balances.
type InvoiceServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	accountRepo ports.AccountRepository
	ledgerSvc   ports.LedgerService
	policy      LedgerPolicy
	log         zerolog.Logger
}

// NewInvoiceService creates a new InvoiceServiceImpl.
func NewInvoiceService(
	invoiceRepo ports.InvoiceRepository,
	accountRepo ports.AccountRepository,
	ledgerSvc ports.LedgerService,
	policy LedgerPolicy,
	log zerolog.Logger,
) *InvoiceServiceImpl {
	return &InvoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
		policy:      policy,
		log:         log,
	}
}

// Issue creates a pending invoice from a business to a customer.
func (s *InvoiceServiceImpl) Issue(ctx context.Context, req ports.IssueInvoiceRequest) (*domain.Invoice, error) {
	if req.Amount.LessThan(s.policy.MinAmount) {
		return nil, apperror.ErrBelowMinimumAmount(s.policy.MinAmount.StringFixed(2))
	}
	if req.Amount.GreaterThan(s.policy.MaxAmount) {
		return nil, apperror.ErrAboveMaximumAmount(s.policy.MaxAmount.StringFixed(2))
	}

	business, err := s.accountRepo.GetByID(ctx, req.BusinessID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find business: %w", err))
	}
	if business == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !business.IsBusiness() {
		return nil, apperror.ErrBusinessAccountRequired()
	}

	customer, err := s.accountRepo.GetByIdentifier(ctx, req.Customer)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	if customer.ID == business.ID {
		return nil, apperror.ErrSelfMovementNotAllowed()
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:          domain.NewInvoiceID(),
		BusinessID:  business.ID,
		CustomerID:  customer.ID,
		Amount:      req.Amount,
		Status:      domain.InvoiceStatusPending,
		Description: req.Note,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create invoice: %w", err))
	}
	return invoice, nil
}

// Pay settles an invoice: the customer authorizes a PAYMENT movement to the
// issuing business. The invoice flips to PAID only after the movement
// applied.
func (s *InvoiceServiceImpl) Pay(ctx context.Context, invoiceID string, customerID uuid.UUID, pin string) (*domain.Movement, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find invoice: %w", err))
	}
	if invoice == nil {
		return nil, apperror.ErrNotFound("invoice")
	}
	if invoice.CustomerID != customerID {
		return nil, apperror.ErrForbidden()
	}
	if !invoice.IsPayable() {
		return nil, apperror.ErrInvoiceNotPayable()
	}

	customer, err := s.accountRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNotFound("account")
	}

	note := "Invoice " + invoice.ID
	movement, err := s.ledgerSvc.AcceptPayment(ctx, ports.AcceptPaymentRequest{
		BusinessID:  invoice.BusinessID,
		Customer:    customer.Username,
		Amount:      invoice.Amount,
		CustomerPin: pin,
		Note:        &note,
	})
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, domain.InvoiceStatusPaid, &movement.ID); err != nil {
		s.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("payment applied but invoice status update failed")
		return movement, nil
	}
	return movement, nil
}

// Cancel voids a still-payable invoice. Only the issuing business may cancel.
func (s *InvoiceServiceImpl) Cancel(ctx context.Context, invoiceID string, businessID uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find invoice: %w", err))
	}
	if invoice == nil {
		return apperror.ErrNotFound("invoice")
	}
	if invoice.BusinessID != businessID {
		return apperror.ErrForbidden()
	}
	if !invoice.IsPayable() {
		return apperror.ErrInvoiceNotPayable()
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, domain.InvoiceStatusCancelled, nil); err != nil {
		return apperror.InternalError(fmt.Errorf("cancel invoice: %w", err))
	}
	return nil
}

// ListIssued returns invoices issued by the business.
func (s *InvoiceServiceImpl) ListIssued(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByBusiness(ctx, businessID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list issued invoices: %w", err))
	}
	return invoices, nil
}

// ListReceived returns invoices addressed to the customer.
func (s *InvoiceServiceImpl) ListReceived(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list received invoices: %w", err))
	}
	return invoices, nil
}

// MarkOverdue sweeps pending invoices past their due date into OVERDUE.
func (s *InvoiceServiceImpl) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.invoiceRepo.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("mark overdue: %w", err))
	}
	if n > 0 {
		s.log.Info().Int64("overdue", n).Msg("marked overdue invoices")
	}
	return n, nil
}
