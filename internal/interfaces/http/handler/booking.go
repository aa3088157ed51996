package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	"github.com/hotel/backoffice/internal/interfaces/http/dto"
	"github.com/hotel/backoffice/internal/interfaces/http/middleware"
)

// BookingHandler exposes the finance view of booking accounts
type BookingHandler struct {
	BaseHandler
	ledger *appbilling.LedgerService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(ledger *appbilling.LedgerService) *BookingHandler {
	return &BookingHandler{ledger: ledger}
}

// RegisterRoutes registers booking finance routes
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:type/:id/finance", h.GetBookingFinance)
}

type bookingFinanceURI struct {
	Type string `uri:"type" binding:"required,oneof=room conference"`
	ID   string `uri:"id" binding:"required,uuid"`
}

// GetBookingFinance returns a booking's financial projection and its
// payment history.
func (h *BookingHandler) GetBookingFinance(c *gin.Context) {
	var req bookingFinanceURI
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	view, err := h.ledger.GetBookingFinance(c.Request.Context(), req.Type, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.BookingFinanceResponseFromDomain(view))
}
