package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appbilling "github.com/hotel/backoffice/internal/application/billing"
	"github.com/hotel/backoffice/internal/interfaces/http/dto"
	"github.com/hotel/backoffice/internal/interfaces/http/middleware"
)

// SettingsHandler exposes the global payment settings
type SettingsHandler struct {
	BaseHandler
	ledger *appbilling.LedgerService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(ledger *appbilling.LedgerService) *SettingsHandler {
	return &SettingsHandler{ledger: ledger}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/payment-settings")
	{
		settings.GET("", h.GetSettings)
		settings.PUT("", h.UpdateSettings)
	}
}

// GetSettings returns the current VAT configuration
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.ledger.GetSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.SettingsResponseFromDomain(settings))
}

// UpdateSettings changes the VAT configuration. Existing payment
// snapshots keep the rate they were recorded with.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	settings, err := h.ledger.UpdateSettings(c.Request.Context(), *req.VATEnabled, decimal.NewFromFloat(req.VATRate))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.SettingsResponseFromDomain(settings))
}
