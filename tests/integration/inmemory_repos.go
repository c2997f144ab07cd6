package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"revpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// inMemoryStore backs every repository with maps guarded by one mutex. The
// fake transaction serializes writers the way row locks do in PostgreSQL:
// Begin takes an exclusive transaction lock, balance updates and the
// movement append are staged, and Commit publishes them atomically.
type inMemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	accounts      map[uuid.UUID]*domain.Account
	movements     map[string]*domain.Movement
	movementOrder []string
	requests      map[string]*domain.MoneyRequest
	invoices      map[string]*domain.Invoice
	loans         map[string]*domain.LoanApplication
	methods       map[uuid.UUID]*domain.PaymentMethod
	notifications map[uuid.UUID]*domain.Notification

	// balanceFaults makes balance writes for the given accounts fail, to
	// exercise mid-transaction rollback.
	balanceFaults map[uuid.UUID]error
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{
		accounts:      make(map[uuid.UUID]*domain.Account),
		movements:     make(map[string]*domain.Movement),
		requests:      make(map[string]*domain.MoneyRequest),
		invoices:      make(map[string]*domain.Invoice),
		loans:         make(map[string]*domain.LoanApplication),
		methods:       make(map[uuid.UUID]*domain.PaymentMethod),
		notifications: make(map[uuid.UUID]*domain.Notification),
	}
}

// --- fake transaction ---

// fakeTx stages balance updates and the movement append until Commit. The
// embedded pgx.Tx stays nil; only Commit and Rollback are ever called on it
// by the code under test.
type fakeTx struct {
	pgx.Tx
	store          *inMemoryStore
	stagedBalances map[uuid.UUID]decimal.Decimal
	stagedMovement *domain.Movement
	done           bool
}

func (s *inMemoryStore) failBalanceWrites(id uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balanceFaults == nil {
		s.balanceFaults = make(map[uuid.UUID]error)
	}
	s.balanceFaults[id] = err
}

func (s *inMemoryStore) accountByUsername(username string) *domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acct := range s.accounts {
		if acct.Username == username {
			cp := *acct
			return &cp
		}
	}
	return nil
}

func (s *inMemoryStore) begin() *fakeTx {
	s.txMu.Lock()
	return &fakeTx{
		store:          s,
		stagedBalances: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.store.mu.Lock()
	for id, balance := range tx.stagedBalances {
		if acct, ok := tx.store.accounts[id]; ok {
			acct.Balance = balance
			acct.UpdatedAt = time.Now().UTC()
		}
	}
	if tx.stagedMovement != nil {
		cp := *tx.stagedMovement
		tx.store.movements[cp.ID] = &cp
		tx.store.movementOrder = append(tx.store.movementOrder, cp.ID)
	}
	tx.store.mu.Unlock()
	tx.done = true
	tx.store.txMu.Unlock()
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.store.txMu.Unlock()
	return nil
}

// inMemoryTransactor implements ports.DBTransactor.
type inMemoryTransactor struct {
	store *inMemoryStore
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.store.begin(), nil
}

// --- account repository ---

type inMemoryAccountRepo struct {
	store *inMemoryStore
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.accounts {
		if existing.Username == account.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *account
	r.store.accounts[account.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acct, ok := r.store.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *acct
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, acct := range r.store.accounts {
		if acct.Username == username {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, acct := range r.store.accounts {
		if acct.Username == identifier || acct.Email == identifier || acct.Phone == identifier {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	ftx, ok := tx.(*fakeTx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acct, found := r.store.accounts[id]
	if !found {
		return nil, nil
	}
	cp := *acct
	if staged, exists := ftx.stagedBalances[id]; exists {
		cp.Balance = staged
	}
	return &cp, nil
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	ftx, ok := tx.(*fakeTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	r.store.mu.RLock()
	fault := r.store.balanceFaults[id]
	r.store.mu.RUnlock()
	if fault != nil {
		return fault
	}
	ftx.stagedBalances[id] = balance
	return nil
}

func (r *inMemoryAccountRepo) SetPinHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acct, ok := r.store.accounts[id]
	if !ok {
		return fmt.Errorf("account not found: %s", id)
	}
	acct.PinHash = pinHash
	return nil
}

func (r *inMemoryAccountRepo) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acct, ok := r.store.accounts[id]
	if !ok {
		return fmt.Errorf("account not found: %s", id)
	}
	acct.Locked = locked
	return nil
}

// --- movement repository ---

type inMemoryMovementRepo struct {
	store *inMemoryStore
}

func (r *inMemoryMovementRepo) Create(ctx context.Context, tx pgx.Tx, movement *domain.Movement) error {
	ftx, ok := tx.(*fakeTx)
	if !ok {
		return fmt.Errorf("unexpected tx type %T", tx)
	}
	r.store.mu.RLock()
	_, exists := r.store.movements[movement.ID]
	r.store.mu.RUnlock()
	if exists {
		return domain.ErrDuplicateMovementID
	}
	cp := *movement
	ftx.stagedMovement = &cp
	return nil
}

func (r *inMemoryMovementRepo) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMovementRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.Movement
	// movementOrder is append-only; walk backwards for most-recent-first.
	for i := len(r.store.movementOrder) - 1; i >= 0; i-- {
		m := r.store.movements[r.store.movementOrder[i]]
		if m.SourceID == accountID || m.DestinationID == accountID {
			matched = append(matched, *m)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// --- money request repository ---

type inMemoryMoneyRequestRepo struct {
	store *inMemoryStore
}

func (r *inMemoryMoneyRequestRepo) Create(ctx context.Context, request *domain.MoneyRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *request
	r.store.requests[request.ID] = &cp
	return nil
}

func (r *inMemoryMoneyRequestRepo) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryMoneyRequestRepo) UpdateStatus(ctx context.Context, id string, status domain.MoneyRequestStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return fmt.Errorf("money request not found: %s", id)
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryMoneyRequestRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.MoneyRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.MoneyRequest
	for _, req := range r.store.requests {
		if req.RequesterID == accountID || req.PayerID == accountID {
			matched = append(matched, *req)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *inMemoryMoneyRequestRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var expired int64
	for _, req := range r.store.requests {
		if req.Status == domain.MoneyRequestStatusPending && !now.Before(req.ExpiresAt) {
			req.Status = domain.MoneyRequestStatusExpired
			req.UpdatedAt = now
			expired++
		}
	}
	return expired, nil
}

// --- invoice repository ---

type inMemoryInvoiceRepo struct {
	store *inMemoryStore
}

func (r *inMemoryInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *invoice
	r.store.invoices[invoice.ID] = &cp
	return nil
}

func (r *inMemoryInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *inMemoryInvoiceRepo) UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, movementID *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invoices[id]
	if !ok {
		return fmt.Errorf("invoice not found: %s", id)
	}
	inv.Status = status
	inv.MovementID = movementID
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryInvoiceRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.Invoice, error) {
	return r.list(func(inv *domain.Invoice) bool { return inv.BusinessID == businessID }, limit, offset)
}

func (r *inMemoryInvoiceRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]domain.Invoice, error) {
	return r.list(func(inv *domain.Invoice) bool { return inv.CustomerID == customerID }, limit, offset)
}

func (r *inMemoryInvoiceRepo) list(match func(*domain.Invoice) bool, limit, offset int) ([]domain.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.Invoice
	for _, inv := range r.store.invoices {
		if match(inv) {
			matched = append(matched, *inv)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *inMemoryInvoiceRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var flipped int64
	for _, inv := range r.store.invoices {
		if inv.Status == domain.InvoiceStatusPending && now.After(inv.DueDate) {
			inv.Status = domain.InvoiceStatusOverdue
			inv.UpdatedAt = now
			flipped++
		}
	}
	return flipped, nil
}

// --- loan repository ---

type inMemoryLoanRepo struct {
	store *inMemoryStore
}

func (r *inMemoryLoanRepo) Create(ctx context.Context, loan *domain.LoanApplication) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *loan
	r.store.loans[loan.ID] = &cp
	return nil
}

func (r *inMemoryLoanRepo) GetByID(ctx context.Context, id string) (*domain.LoanApplication, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	loan, ok := r.store.loans[id]
	if !ok {
		return nil, nil
	}
	cp := *loan
	return &cp, nil
}

func (r *inMemoryLoanRepo) UpdateStatus(ctx context.Context, id string, status domain.LoanStatus, decidedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	loan, ok := r.store.loans[id]
	if !ok {
		return fmt.Errorf("loan application not found: %s", id)
	}
	loan.Status = status
	loan.DecidedAt = &decidedAt
	return nil
}

func (r *inMemoryLoanRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.LoanApplication, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.LoanApplication
	for _, loan := range r.store.loans {
		if loan.BusinessID == businessID {
			matched = append(matched, *loan)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// --- payment method repository ---

type inMemoryPaymentMethodRepo struct {
	store *inMemoryStore
}

func (r *inMemoryPaymentMethodRepo) Create(ctx context.Context, method *domain.PaymentMethod) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *method
	r.store.methods[method.ID] = &cp
	return nil
}

func (r *inMemoryPaymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.methods[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryPaymentMethodRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentMethod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.PaymentMethod
	for _, m := range r.store.methods {
		if m.AccountID == accountID {
			matched = append(matched, *m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, nil
}

func (r *inMemoryPaymentMethodRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.methods[id]
	if !ok {
		return fmt.Errorf("payment method not found: %s", id)
	}
	m.Active = false
	return nil
}

// --- notification repository ---

type inMemoryNotificationRepo struct {
	store *inMemoryStore
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *notification
	r.store.notifications[notification.ID] = &cp
	return nil
}

func (r *inMemoryNotificationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.Notification
	for _, n := range r.store.notifications {
		if n.AccountID != accountID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		matched = append(matched, *n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *inMemoryNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.notifications[id]
	if !ok {
		return fmt.Errorf("notification not found: %s", id)
	}
	n.Read = true
	return nil
}

func (r *inMemoryNotificationRepo) MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var updated int64
	for _, n := range r.store.notifications {
		if n.AccountID == accountID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}
