package handler

import (
	"time"

	"revpay/internal/adapter/http/dto"
	"revpay/internal/adapter/http/middleware"
	"revpay/internal/core/domain"
	"revpay/internal/core/ports"
	"revpay/pkg/apperror"
	"revpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles business invoicing endpoints.
type InvoiceHandler struct {
	invoiceSvc ports.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceSvc ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceSvc: invoiceSvc}
}

// Issue handles POST /api/v1/invoices. Business accounts only.
func (h *InvoiceHandler) Issue(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.IssueInvoiceRequest
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
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		response.Error(c, apperror.Validation("due_date must be RFC 3339"))
		return
	}

	invoice, err := h.invoiceSvc.Issue(c.Request.Context(), ports.IssueInvoiceRequest{
		BusinessID: businessID,
		Customer:   req.Customer,
		Amount:     amount,
		Note:       req.Note,
		DueDate:    dueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toInvoiceResponse(invoice))
}

// Pay handles POST /api/v1/invoices/:id/pay. The customer settles the
// invoice with a PAYMENT movement.
func (h *InvoiceHandler) Pay(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	movement, err := h.invoiceSvc.Pay(c.Request.Context(), c.Param("id"), accountID, req.Pin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMovementResponse(movement))
}

// Cancel handles POST /api/v1/invoices/:id/cancel. Only the issuing
// business may cancel.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.invoiceSvc.Cancel(c.Request.Context(), c.Param("id"), businessID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "invoice cancelled"})
}

// ListIssued handles GET /api/v1/invoices/issued.
func (h *InvoiceHandler) ListIssued(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := pagination(c)
	invoices, err := h.invoiceSvc.ListIssued(c.Request.Context(), businessID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toInvoiceResponses(invoices))
}

// ListReceived handles GET /api/v1/invoices/received.
func (h *InvoiceHandler) ListReceived(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := pagination(c)
	invoices, err := h.invoiceSvc.ListReceived(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toInvoiceResponses(invoices))
}

func toInvoiceResponses(invoices []domain.Invoice) []dto.InvoiceResponse {
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, toInvoiceResponse(&invoices[i]))
	}
	return items
}

// toInvoiceResponse converts domain.Invoice to its DTO.
func toInvoiceResponse(i *domain.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:         i.ID,
		BusinessID: i.BusinessID.String(),
		CustomerID: i.CustomerID.String(),
		Amount:     i.Amount.StringFixed(2),
		Status:     string(i.Status),
		Note:       i.Description,
		MovementID: i.MovementID,
		DueDate:    i.DueDate.Format("2006-01-02T15:04:05Z07:00"),
		CreatedAt:  i.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
