package handler

import (
	"revpay/internal/adapter/http/dto"
	"revpay/internal/adapter/http/middleware"
	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"
	"revpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentMethodHandler handles stored card endpoints.
type PaymentMethodHandler struct {
	methodSvc ports.PaymentMethodService
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(methodSvc ports.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{methodSvc: methodSvc}
}

// Add handles POST /api/v1/payment-methods.
func (h *PaymentMethodHandler) Add(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	method, err := h.methodSvc.Add(c.Request.Context(), ports.AddPaymentMethodRequest{
		AccountID:   accountID,
		CardNumber:  req.CardNumber,
		HolderName:  req.HolderName,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CardType:    req.CardType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPaymentMethodResponse(method))
}

// List handles GET /api/v1/payment-methods.
func (h *PaymentMethodHandler) List(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methods, err := h.methodSvc.List(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		items = append(items, toPaymentMethodResponse(&methods[i]))
	}
	response.OK(c, items)
}

// Deactivate handles DELETE /api/v1/payment-methods/:id.
func (h *PaymentMethodHandler) Deactivate(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a uuid"))
		return
	}

	if err := h.methodSvc.Deactivate(c.Request.Context(), methodID, accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "payment method deactivated"})
}

// toPaymentMethodResponse converts domain.PaymentMethod to its DTO. The
// encrypted card number never leaves the service layer.
func toPaymentMethodResponse(p *domain.PaymentMethod) dto.PaymentMethodResponse {
	return dto.PaymentMethodResponse{
		ID:          p.ID.String(),
		Last4:       p.Last4,
		HolderName:  p.HolderName,
		ExpiryMonth: p.ExpiryMonth,
		ExpiryYear:  p.ExpiryYear,
		CardType:    p.CardType,
		Active:      p.Active,
	}
}
