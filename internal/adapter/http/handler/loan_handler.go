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

// LoanHandler handles loan application endpoints (business accounts only).
type LoanHandler struct {
	loanSvc ports.LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanSvc ports.LoanService) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc}
}

// Apply handles POST /api/v1/loans.
func (h *LoanHandler) Apply(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.LoanApplicationRequest
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

	loan, err := h.loanSvc.Apply(c.Request.Context(), ports.LoanApplicationRequest{
		BusinessID: businessID,
		Amount:     amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toLoanResponse(loan))
}

// Decide handles POST /api/v1/loans/:id/decide.
func (h *LoanHandler) Decide(c *gin.Context) {
	deciderID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.LoanDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	loan, err := h.loanSvc.Decide(c.Request.Context(), c.Param("id"), deciderID, req.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toLoanResponse(loan))
}

// List handles GET /api/v1/loans.
func (h *LoanHandler) List(c *gin.Context) {
	businessID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset := pagination(c)
	loans, err := h.loanSvc.ListByBusiness(c.Request.Context(), businessID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.LoanResponse, 0, len(loans))
	for i := range loans {
		items = append(items, toLoanResponse(&loans[i]))
	}
	response.OK(c, items)
}

// toLoanResponse converts domain.LoanApplication to its DTO.
func toLoanResponse(l *domain.LoanApplication) dto.LoanResponse {
	return dto.LoanResponse{
		ID:         l.ID,
		BusinessID: l.BusinessID.String(),
		Amount:     l.Amount.StringFixed(2),
		TermMonths: l.TermMonths,
		Purpose:    l.Purpose,
		Status:     string(l.Status),
		CreatedAt:  l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
