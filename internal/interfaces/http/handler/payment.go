package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared"
	"github.com/hotel/backoffice/internal/interfaces/http/dto"
	"github.com/hotel/backoffice/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment ledger API endpoints
type PaymentHandler struct {
	BaseHandler
	ledger *appbilling.LedgerService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(ledger *appbilling.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledger: ledger}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
	}
}

// CreatePayment records a new payment against a booking
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	input := appbilling.RecordPaymentInput{
		BookingKind:          req.BookingType,
		BookingID:            bookingID,
		PaymentDate:          req.PaymentDate,
		Amount:               decimal.NewFromFloat(req.PaymentAmount),
		Method:               req.PaymentMethod,
		Status:               req.PaymentStatus,
		TransactionReference: req.TransactionReference,
		CCEmails:             req.CCEmails,
		ProcessedBy:          req.ProcessedBy,
		Notes:                req.Notes,
	}

	payment, err := h.ledger.RecordPayment(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.PaymentResponseFromDomain(payment))
}

// ListPayments returns a filtered page of the payment ledger
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}
	req.Normalize()

	filter := billing.PaymentFilter{
		Filter: shared.Filter{
			Limit:  req.PageSize,
			Offset: (req.Page - 1) * req.PageSize,
			SortBy: req.SortBy,
			Desc:   req.Desc,
		},
	}
	if req.BookingType != "" {
		kind := billing.BookingKind(req.BookingType)
		filter.BookingKind = &kind
	}
	if req.BookingID != "" {
		id, err := uuid.Parse(req.BookingID)
		if err != nil {
			h.BadRequest(c, "Invalid booking ID format")
			return
		}
		filter.BookingID = &id
	}
	if req.Status != "" {
		status := billing.PaymentStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.ledger.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.PaymentResponse, len(page.Items))
	for i, p := range page.Items {
		items[i] = dto.PaymentResponseFromDomain(p)
	}
	h.SuccessWithMeta(c, items, page.Total, req.Page, req.PageSize)
}

// GetPayment returns a single payment by ID
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.ledger.GetPayment(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.PaymentResponseFromDomain(payment))
}

// UpdatePayment edits a payment and reconciles the owning booking
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	input := appbilling.UpdatePaymentInput{
		PaymentDate:          req.PaymentDate,
		Method:               req.PaymentMethod,
		Status:               req.PaymentStatus,
		TransactionReference: req.TransactionReference,
		CCEmails:             req.CCEmails,
		ProcessedBy:          req.ProcessedBy,
		Notes:                req.Notes,
	}
	if req.PaymentAmount != nil {
		amount := decimal.NewFromFloat(*req.PaymentAmount)
		input.Amount = &amount
	}

	payment, err := h.ledger.UpdatePayment(c.Request.Context(), uuid.MustParse(idReq.ID), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.PaymentResponseFromDomain(payment))
}

// DeletePayment soft-deletes a payment
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.ledger.DeletePayment(c.Request.Context(), uuid.MustParse(req.ID)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
