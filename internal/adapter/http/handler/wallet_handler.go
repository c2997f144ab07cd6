package handler

import (
	"strconv"

	"revpay/internal/adapter/http/dto"
	"revpay/internal/adapter/http/middleware"
	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"
	"revpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints: balance, history, deposits and
// withdrawals.
type WalletHandler struct {
	ledgerSvc       ports.LedgerService
	reportingSvc    ports.ReportingService
	notificationSvc ports.NotificationService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService, notificationSvc ports.NotificationService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc:       ledgerSvc,
		reportingSvc:    reportingSvc,
		notificationSvc: notificationSvc,
	}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.reportingSvc.Balance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Balance: balance.StringFixed(2)})
}

// GetHistory handles GET /api/v1/wallet/history.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := pagination(c)
	movements, err := h.reportingSvc.History(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, toMovementResponse(&movements[i]))
	}
	response.OK(c, dto.MovementListResponse{Items: items, Limit: limit, Offset: offset})
}

// Deposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	methodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		response.Error(c, apperror.Validation("payment_method_id must be a uuid"))
		return
	}

	movement, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		MovementID:      req.MovementID,
		AccountID:       accountID,
		Amount:          amount,
		PaymentMethodID: methodID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyMovement(c, h.notificationSvc, accountID, "Deposit of "+movement.Amount.StringFixed(2)+" completed")
	response.Created(c, toMovementResponse(movement))
}

// Withdraw handles POST /api/v1/wallet/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	movement, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		MovementID: req.MovementID,
		AccountID:  accountID,
		Amount:     amount,
		Pin:        req.Pin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	notifyMovement(c, h.notificationSvc, accountID, "Withdrawal of "+movement.Amount.StringFixed(2)+" completed")
	response.Created(c, toMovementResponse(movement))
}

// notifyMovement records a movement notification, best-effort. The movement
// has already committed; a notification write failure never fails the
// request.
func notifyMovement(c *gin.Context, svc ports.NotificationService, accountID uuid.UUID, message string) {
	if svc == nil {
		return
	}
	_ = svc.Notify(c.Request.Context(), accountID, domain.NotificationKindMovement, message)
}

// toMovementResponse converts domain.Movement to its DTO.
func toMovementResponse(m *domain.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		Kind:          string(m.Kind),
		SourceID:      m.SourceID.String(),
		DestinationID: m.DestinationID.String(),
		Amount:        m.Amount.StringFixed(2),
		Fee:           m.Fee.StringFixed(2),
		Status:        string(m.Status),
		Note:          m.Description,
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// pagination extracts limit/offset query parameters with sane bounds.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
