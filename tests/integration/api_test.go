package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpHandler "revpay/internal/adapter/http/handler"
	redisStorage "revpay/internal/adapter/storage/redis"
	"revpay/internal/service"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack over in-memory storage: real
// HTTP layer, middleware, handlers and services, with miniredis backing the
// idempotency cache and PIN limiter and map-based repos behind the ports.

type testApp struct {
	server *httptest.Server
	store  *inMemoryStore
	redis  *miniredis.Miniredis
	client *goredis.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := newInMemoryStore()
	accountRepo := &inMemoryAccountRepo{store: store}
	movementRepo := &inMemoryMovementRepo{store: store}
	requestRepo := &inMemoryMoneyRequestRepo{store: store}
	invoiceRepo := &inMemoryInvoiceRepo{store: store}
	loanRepo := &inMemoryLoanRepo{store: store}
	methodRepo := &inMemoryPaymentMethodRepo{store: store}
	notifRepo := &inMemoryNotificationRepo{store: store}
	transactor := &inMemoryTransactor{store: store}

	idempCache := redisStorage.NewIdempotencyCache(rdb)
	pinLimiter := redisStorage.NewPinAttemptLimiter(rdb, 5, 15*time.Minute)
	loginLimiter := redisStorage.NewLoginAttemptLimiter(rdb, 5, 15*time.Minute)

	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "revpay-test")

	log := zerolog.Nop()
	policy := service.LedgerPolicy{
		MinAmount: decimal.RequireFromString("1.00"),
		MaxAmount: decimal.RequireFromString("10000.00"),
		FeeRate:   decimal.RequireFromString("0.015"),
	}

	ledgerSvc := service.NewLedgerService(accountRepo, movementRepo, methodRepo, idempCache, pinLimiter, hashSvc, transactor, policy, log)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, loginLimiter, log)
	reportingSvc := service.NewReportingService(accountRepo, movementRepo)
	requestSvc := service.NewMoneyRequestService(requestRepo, accountRepo, ledgerSvc, policy, 72*time.Hour, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, accountRepo, ledgerSvc, policy, log)
	loanSvc := service.NewLoanService(loanRepo, accountRepo, log)
	methodSvc := service.NewPaymentMethodService(methodRepo, encSvc, log)
	notifSvc := service.NewNotificationService(notifRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		LedgerSvc:       ledgerSvc,
		ReportingSvc:    reportingSvc,
		MoneyRequestSvc: requestSvc,
		InvoiceSvc:      invoiceSvc,
		LoanSvc:         loanSvc,
		MethodSvc:       methodSvc,
		NotificationSvc: notifSvc,
		TokenSvc:        tokenSvc,
		Logger:          log,
	})

	return &testApp{
		server: httptest.NewServer(router),
		store:  store,
		redis:  mr,
		client: rdb,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.client.Close()
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
}

// do fires a JSON request at the test server and decodes the envelope.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

var phoneSeq atomic.Int64

// register creates an account and returns its id.
func (a *testApp) register(t *testing.T, username, kind string) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username":  username,
		"email":     username + "@example.com",
		"phone":     fmt.Sprintf("555%07d", phoneSeq.Add(1)),
		"full_name": username + " Example",
		"password":  "password123",
		"kind":      kind,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %s", username, env.Message)

	var acct struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &acct)
	return acct.ID
}

func (a *testApp) login(t *testing.T, username string) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, "login %s: %s", username, env.Message)

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func (a *testApp) setPin(t *testing.T, token, pin string) {
	t.Helper()
	status, env := a.do(t, http.MethodPut, "/api/v1/auth/pin", token, map[string]string{
		"password": "password123",
		"pin":      pin,
	})
	require.Equal(t, http.StatusOK, status, "set pin: %s", env.Message)
}

func (a *testApp) addCard(t *testing.T, token string) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/payment-methods", token, map[string]interface{}{
		"card_number":  "4242 4242 4242 4242",
		"holder_name":  "TEST HOLDER",
		"expiry_month": 12,
		"expiry_year":  2031,
		"card_type":    "VISA",
	})
	require.Equal(t, http.StatusCreated, status, "add card: %s", env.Message)

	var method struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &method)
	return method.ID
}

func (a *testApp) deposit(t *testing.T, token, amount, methodID string) {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]string{
		"amount":            amount,
		"payment_method_id": methodID,
	})
	require.Equal(t, http.StatusCreated, status, "deposit %s: %s", amount, env.Message)
}

func (a *testApp) balance(t *testing.T, token string) string {
	t.Helper()
	status, env := a.do(t, http.MethodGet, "/api/v1/wallet/balance", token, nil)
	require.Equal(t, http.StatusOK, status)

	var bal struct {
		Balance string `json:"balance"`
	}
	decodeData(t, env, &bal)
	return bal.Balance
}

// ==================== Scenario Tests ====================

func TestRegisterLoginAndSetPin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	token := app.login(t, "alice")

	assert.Equal(t, "0.00", app.balance(t, token))

	app.setPin(t, token, "1234")

	// A second login reflects the configured PIN.
	status, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Account struct {
			HasPin bool `json:"has_pin"`
		} `json:"account"`
	}
	decodeData(t, env, &login)
	assert.True(t, login.Account.HasPin)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")

	status, env := app.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username":  "alice",
		"email":     "other@example.com",
		"phone":     "5559999999",
		"full_name": "Other Person",
		"password":  "password123",
		"kind":      "PERSONAL",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AUTH_002", env.ErrorCode)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")

	status, env := app.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username":  "alice2",
		"email":     "alice@example.com",
		"phone":     "5558888888",
		"full_name": "Second Alice",
		"password":  "password123",
		"kind":      "PERSONAL",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AUTH_009", env.ErrorCode)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	token := app.login(t, "alice")
	app.setPin(t, token, "1234")
	methodID := app.addCard(t, token)
	app.deposit(t, token, "100.00", methodID)

	for i := 0; i < 5; i++ {
		status, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "alice",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "AUTH_001", env.ErrorCode)
	}

	// The account is now locked; even the right password is refused.
	status, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_008", env.ErrorCode)

	// A session issued before the lock cannot move funds either.
	status, env = app.do(t, http.MethodPost, "/api/v1/wallet/withdraw", token, map[string]string{
		"amount": "10.00",
		"pin":    "1234",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_008", env.ErrorCode)
	assert.Equal(t, "100.00", app.balance(t, token))
}

func TestDepositTransferAndBalances(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	bobToken := app.login(t, "bob")
	app.setPin(t, aliceToken, "1234")

	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "1000.00", methodID)
	assert.Equal(t, "1000.00", app.balance(t, aliceToken))

	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, map[string]string{
		"recipient": "bob",
		"amount":    "50.00",
		"pin":       "1234",
	})
	require.Equal(t, http.StatusCreated, status, "transfer: %s", env.Message)

	var movement struct {
		Kind   string `json:"kind"`
		Amount string `json:"amount"`
		Fee    string `json:"fee"`
		Status string `json:"status"`
	}
	decodeData(t, env, &movement)
	assert.Equal(t, "TRANSFER", movement.Kind)
	assert.Equal(t, "50.00", movement.Amount)
	assert.Equal(t, "0.75", movement.Fee)
	assert.Equal(t, "COMPLETED", movement.Status)

	// Source paid amount plus fee; recipient got the net amount.
	assert.Equal(t, "949.25", app.balance(t, aliceToken))
	assert.Equal(t, "50.00", app.balance(t, bobToken))

	// Both sides see the movement in their history.
	for _, token := range []string{aliceToken, bobToken} {
		status, env := app.do(t, http.MethodGet, "/api/v1/wallet/history", token, nil)
		require.Equal(t, http.StatusOK, status)
		var history struct {
			Items []struct {
				Kind string `json:"kind"`
			} `json:"items"`
		}
		decodeData(t, env, &history)
		require.NotEmpty(t, history.Items)
		assert.Equal(t, "TRANSFER", history.Items[0].Kind)
	}
}

func TestTransferIdempotency(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	app.setPin(t, aliceToken, "1234")

	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "1000.00", methodID)

	body := map[string]string{
		"movement_id": "TXN-retry-test",
		"recipient":   "bob",
		"amount":      "50.00",
		"pin":         "1234",
	}

	status, _ := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, body)
	require.Equal(t, http.StatusCreated, status)

	// The retried submit is rejected and money moves only once.
	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PAY_002", env.ErrorCode)

	assert.Equal(t, "949.25", app.balance(t, aliceToken))
}

func TestTransfer_PinNotSet(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")

	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, map[string]string{
		"recipient": "bob",
		"amount":    "10.00",
		"pin":       "1234",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_004", env.ErrorCode)
}

func TestTransfer_LockoutAfterRepeatedWrongPin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	app.setPin(t, aliceToken, "1234")
	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "100.00", methodID)

	body := map[string]string{
		"recipient": "bob",
		"amount":    "10.00",
		"pin":       "9999",
	}
	for i := 0; i < 5; i++ {
		status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, body)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "AUTH_005", env.ErrorCode)
	}

	// Sixth attempt is locked out even with the right PIN.
	body["pin"] = "1234"
	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_002", env.ErrorCode)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	aliceToken := app.login(t, "alice")
	app.setPin(t, aliceToken, "1234")
	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "30.00", methodID)

	status, env := app.do(t, http.MethodPost, "/api/v1/wallet/withdraw", aliceToken, map[string]string{
		"amount": "40.00",
		"pin":    "1234",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "PAY_001", env.ErrorCode)

	// Nothing moved.
	assert.Equal(t, "30.00", app.balance(t, aliceToken))
}

func TestMoneyRequestAcceptFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	bobToken := app.login(t, "bob")
	app.setPin(t, bobToken, "5678")

	methodID := app.addCard(t, bobToken)
	app.deposit(t, bobToken, "100.00", methodID)

	// Alice asks Bob for 20.00.
	status, env := app.do(t, http.MethodPost, "/api/v1/money-requests", aliceToken, map[string]string{
		"payer":  "bob",
		"amount": "20.00",
	})
	require.Equal(t, http.StatusCreated, status, "create request: %s", env.Message)

	var request struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &request)
	assert.Equal(t, "PENDING", request.Status)

	// Bob accepts; the transfer settles with his PIN.
	status, env = app.do(t, http.MethodPost, "/api/v1/money-requests/"+request.ID+"/accept", bobToken, map[string]string{
		"pin": "5678",
	})
	require.Equal(t, http.StatusOK, status, "accept request: %s", env.Message)

	// Bob paid 20.00 plus the 0.30 fee; Alice received 20.00.
	assert.Equal(t, "79.70", app.balance(t, bobToken))
	assert.Equal(t, "20.00", app.balance(t, aliceToken))
}

func TestInvoicePayFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "acme", "BUSINESS")
	app.register(t, "carol", "PERSONAL")
	acmeToken := app.login(t, "acme")
	carolToken := app.login(t, "carol")
	app.setPin(t, carolToken, "4321")

	methodID := app.addCard(t, carolToken)
	app.deposit(t, carolToken, "500.00", methodID)

	status, env := app.do(t, http.MethodPost, "/api/v1/invoices", acmeToken, map[string]string{
		"customer": "carol",
		"amount":   "120.00",
		"due_date": time.Now().UTC().Add(14 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status, "issue invoice: %s", env.Message)

	var invoice struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &invoice)
	assert.Equal(t, "PENDING", invoice.Status)

	status, env = app.do(t, http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/pay", carolToken, map[string]string{
		"pin": "4321",
	})
	require.Equal(t, http.StatusOK, status, "pay invoice: %s", env.Message)

	// Customer paid 120.00 plus 1.80 fee; the business collected 120.00.
	assert.Equal(t, "378.20", app.balance(t, carolToken))
	assert.Equal(t, "120.00", app.balance(t, acmeToken))

	// The invoice is settled and linked to its movement.
	status, env = app.do(t, http.MethodGet, "/api/v1/invoices/received", carolToken, nil)
	require.Equal(t, http.StatusOK, status)
	var received []struct {
		ID         string  `json:"id"`
		Status     string  `json:"status"`
		MovementID *string `json:"movement_id"`
	}
	decodeData(t, env, &received)
	require.Len(t, received, 1)
	assert.Equal(t, "PAID", received[0].Status)
	require.NotNil(t, received[0].MovementID)
}

func TestInvoiceIssue_RequiresBusinessAccount(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")

	status, env := app.do(t, http.MethodPost, "/api/v1/invoices", aliceToken, map[string]string{
		"customer": "bob",
		"amount":   "10.00",
		"due_date": time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_006", env.ErrorCode)
}

func TestSecurityNotificationAfterPinChange(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	token := app.login(t, "alice")
	app.setPin(t, token, "1234")

	status, env := app.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, status)

	var notifications []struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Read    bool   `json:"read"`
	}
	decodeData(t, env, &notifications)
	require.NotEmpty(t, notifications)
	assert.Equal(t, "SECURITY", notifications[0].Kind)
	assert.Contains(t, notifications[0].Message, "PIN")
	assert.False(t, notifications[0].Read)
}

func TestTransferNotifiesBothParties(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	bobToken := app.login(t, "bob")
	app.setPin(t, aliceToken, "1234")
	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "1000.00", methodID)

	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, map[string]string{
		"recipient": "bob",
		"amount":    "50.00",
		"pin":       "1234",
	})
	require.Equal(t, http.StatusCreated, status, "transfer: %s", env.Message)

	hasMovementNotification := func(token, message string) bool {
		status, env := app.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
		require.Equal(t, http.StatusOK, status)
		var items []struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}
		decodeData(t, env, &items)
		for _, item := range items {
			if item.Kind == "MOVEMENT" && item.Message == message {
				return true
			}
		}
		return false
	}

	assert.True(t, hasMovementNotification(aliceToken, "You sent 50.00"))
	assert.True(t, hasMovementNotification(bobToken, "You received 50.00"))
}

func TestLoanDecision_ApplicantCannotApproveOwnLoan(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "acme", "BUSINESS")
	app.register(t, "underwriter", "BUSINESS")
	acmeToken := app.login(t, "acme")
	underwriterToken := app.login(t, "underwriter")

	status, env := app.do(t, http.MethodPost, "/api/v1/loans", acmeToken, map[string]interface{}{
		"amount":      "5000.00",
		"term_months": 12,
		"purpose":     "inventory",
	})
	require.Equal(t, http.StatusCreated, status, "apply: %s", env.Message)

	var loan struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &loan)
	require.Equal(t, "PENDING", loan.Status)

	// The applicant's own token cannot settle its own application.
	status, env = app.do(t, http.MethodPost, "/api/v1/loans/"+loan.ID+"/decide", acmeToken, map[string]bool{
		"approve": true,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_007", env.ErrorCode)

	// A different account can.
	status, env = app.do(t, http.MethodPost, "/api/v1/loans/"+loan.ID+"/decide", underwriterToken, map[string]bool{
		"approve": true,
	})
	require.Equal(t, http.StatusOK, status, "decide: %s", env.Message)
	decodeData(t, env, &loan)
	assert.Equal(t, "APPROVED", loan.Status)
}

func TestTransferRollsBackWhenCreditFails(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice", "PERSONAL")
	app.register(t, "bob", "PERSONAL")
	aliceToken := app.login(t, "alice")
	bobToken := app.login(t, "bob")
	app.setPin(t, aliceToken, "1234")
	methodID := app.addCard(t, aliceToken)
	app.deposit(t, aliceToken, "100.00", methodID)

	// Fail every balance write against Bob's row, so the credit leg of the
	// transfer errors after the debit leg has been staged.
	bob := app.store.accountByUsername("bob")
	require.NotNil(t, bob)
	app.store.failBalanceWrites(bob.ID, fmt.Errorf("induced write failure"))

	status, env := app.do(t, http.MethodPost, "/api/v1/transfers", aliceToken, map[string]string{
		"recipient": "bob",
		"amount":    "50.00",
		"pin":       "1234",
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "SYS_001", env.ErrorCode)

	// The debit rolled back with the failed credit.
	assert.Equal(t, "100.00", app.balance(t, aliceToken))
	assert.Equal(t, "0.00", app.balance(t, bobToken))

	// No half-written movement survives in either history.
	for _, token := range []string{aliceToken, bobToken} {
		status, env := app.do(t, http.MethodGet, "/api/v1/wallet/history", token, nil)
		require.Equal(t, http.StatusOK, status)
		var history struct {
			Items []struct {
				Kind string `json:"kind"`
			} `json:"items"`
		}
		decodeData(t, env, &history)
		for _, item := range history.Items {
			assert.NotEqual(t, "TRANSFER", item.Kind)
		}
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	for _, path := range []string{
		"/api/v1/wallet/balance",
		"/api/v1/wallet/history",
		"/api/v1/notifications",
	} {
		status, env := app.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "AUTH_003", env.ErrorCode)
	}
}
