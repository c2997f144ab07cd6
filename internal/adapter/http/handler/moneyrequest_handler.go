package handler

import (
	"revpay/internal/adapter/http/dto"
	"revpay/internal/adapter/http/middleware"
	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"
	"revpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// MoneyRequestHandler handles ask-for-funds endpoints.
type MoneyRequestHandler struct {
	requestSvc ports.MoneyRequestService
}

// NewMoneyRequestHandler creates a new MoneyRequestHandler.
func NewMoneyRequestHandler(requestSvc ports.MoneyRequestService) *MoneyRequestHandler {
	return &MoneyRequestHandler{requestSvc: requestSvc}
}

// Create handles POST /api/v1/money-requests.
func (h *MoneyRequestHandler) Create(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateMoneyRequestRequest
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

	request, err := h.requestSvc.Create(c.Request.Context(), ports.CreateMoneyRequestRequest{
		RequesterID: accountID,
		Payer:       req.Payer,
		Amount:      amount,
		Note:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMoneyRequestResponse(request))
}

// Accept handles POST /api/v1/money-requests/:id/accept. The payer settles
// the request, which drives a transfer through the ledger engine.
func (h *MoneyRequestHandler) Accept(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AcceptMoneyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	movement, err := h.requestSvc.Accept(c.Request.Context(), c.Param("id"), accountID, req.Pin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMovementResponse(movement))
}

// Decline handles POST /api/v1/money-requests/:id/decline.
func (h *MoneyRequestHandler) Decline(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.requestSvc.Decline(c.Request.Context(), c.Param("id"), accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "money request declined"})
}

// Cancel handles POST /api/v1/money-requests/:id/cancel. Only the requester
// may cancel.
func (h *MoneyRequestHandler) Cancel(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.requestSvc.Cancel(c.Request.Context(), c.Param("id"), accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "money request cancelled"})
}

// List handles GET /api/v1/money-requests.
func (h *MoneyRequestHandler) List(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := pagination(c)
	requests, err := h.requestSvc.ListByAccount(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.MoneyRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, toMoneyRequestResponse(&requests[i]))
	}
	response.OK(c, items)
}

// toMoneyRequestResponse converts domain.MoneyRequest to its DTO.
func toMoneyRequestResponse(r *domain.MoneyRequest) dto.MoneyRequestResponse {
	return dto.MoneyRequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID.String(),
		PayerID:     r.PayerID.String(),
		Amount:      r.Amount.StringFixed(2),
		Status:      string(r.Status),
		Note:        r.Description,
		ExpiresAt:   r.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
