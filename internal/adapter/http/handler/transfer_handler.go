package handler

import (
	"revpay/internal/adapter/http/dto"
	"revpay/internal/adapter/http/middleware"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"
	"revpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles money movement between accounts: peer-to-peer
// transfers and business payment collection. Both parties are notified once
// a movement settles.
type TransferHandler struct {
	ledgerSvc       ports.LedgerService
	notificationSvc ports.NotificationService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerSvc ports.LedgerService, notificationSvc ports.NotificationService) *TransferHandler {
	return &TransferHandler{
		ledgerSvc:       ledgerSvc,
		notificationSvc: notificationSvc,
	}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	movement, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		MovementID: req.MovementID,
		SourceID:   accountID,
		Recipient:  req.Recipient,
		Amount:     amount,
		Pin:        req.Pin,
		Note:       req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	amountStr := movement.Amount.StringFixed(2)
	notifyMovement(c, h.notificationSvc, movement.SourceID, "You sent "+amountStr)
	notifyMovement(c, h.notificationSvc, movement.DestinationID, "You received "+amountStr)
	response.Created(c, toMovementResponse(movement))
}

// AcceptPayment handles POST /api/v1/payments/collect. The authenticated
// account must be a business; the customer authorizes with their own PIN.
func (h *TransferHandler) AcceptPayment(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AcceptPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	movement, err := h.ledgerSvc.AcceptPayment(c.Request.Context(), ports.AcceptPaymentRequest{
		MovementID:  req.MovementID,
		BusinessID:  businessID,
		Customer:    req.Customer,
		Amount:      amount,
		CustomerPin: req.CustomerPin,
		Note:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	amountStr := movement.Amount.StringFixed(2)
	notifyMovement(c, h.notificationSvc, movement.SourceID, "Payment of "+amountStr+" sent")
	notifyMovement(c, h.notificationSvc, movement.DestinationID, "Payment of "+amountStr+" received")
	response.Created(c, toMovementResponse(movement))
}
