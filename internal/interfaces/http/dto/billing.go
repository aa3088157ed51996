package dto

import (
	"time"

	"github.com/hotel/backoffice/internal/application/billing"
	domainbilling "github.com/hotel/backoffice/internal/domain/billing"
)

// CreatePaymentRequest is the payload for recording a payment
type CreatePaymentRequest struct {
	BookingType          string     `json:"booking_type" binding:"required,oneof=room conference"`
	BookingID            string     `json:"booking_id" binding:"required,uuid"`
	PaymentDate          *time.Time `json:"payment_date"`
	PaymentAmount        float64    `json:"payment_amount" binding:"required,gt=0"`
	PaymentMethod        string     `json:"payment_method" binding:"required"`
	PaymentStatus        string     `json:"payment_status" binding:"omitempty,oneof=pending completed failed refunded partially_refunded"`
	TransactionReference string     `json:"transaction_reference"`
	CCEmails             []string   `json:"cc_emails" binding:"omitempty,dive,email"`
	ProcessedBy          string     `json:"processed_by"`
	Notes                string     `json:"notes"`
}

// UpdatePaymentRequest is the payload for editing a payment. Absent
// fields are left unchanged.
type UpdatePaymentRequest struct {
	PaymentDate          *time.Time `json:"payment_date"`
	PaymentAmount        *float64   `json:"payment_amount" binding:"omitempty,gt=0"`
	PaymentMethod        *string    `json:"payment_method"`
	PaymentStatus        *string    `json:"payment_status" binding:"omitempty,oneof=pending completed failed refunded partially_refunded"`
	TransactionReference *string    `json:"transaction_reference"`
	CCEmails             []string   `json:"cc_emails" binding:"omitempty,dive,email"`
	ProcessedBy          *string    `json:"processed_by"`
	Notes                *string    `json:"notes"`
}

// ListPaymentsRequest filters the payment ledger listing
type ListPaymentsRequest struct {
	ListRequest
	BookingType string `form:"booking_type" binding:"omitempty,oneof=room conference"`
	BookingID   string `form:"booking_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=pending completed failed refunded partially_refunded"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=payment_date payment_amount created_at"`
	Desc        bool   `form:"desc"`
}

// UpdateSettingsRequest changes the global VAT configuration
type UpdateSettingsRequest struct {
	VATEnabled *bool   `json:"vat_enabled" binding:"required"`
	VATRate    float64 `json:"vat_rate" binding:"min=0,max=100"`
}

// PaymentResponse is the API view of a payment ledger entry
type PaymentResponse struct {
	ID                   string     `json:"id"`
	PaymentReference     string     `json:"payment_reference"`
	ReceiptNumber        *string    `json:"receipt_number"`
	BookingType          string     `json:"booking_type"`
	BookingID            string     `json:"booking_id"`
	BookingReference     string     `json:"booking_reference"`
	PaymentDate          time.Time  `json:"payment_date"`
	PaymentAmount        string     `json:"payment_amount"`
	VATRate              string     `json:"vat_rate"`
	VATAmount            string     `json:"vat_amount"`
	TotalAmount          string     `json:"total_amount"`
	Currency             string     `json:"currency"`
	PaymentMethod        string     `json:"payment_method"`
	PaymentStatus        string     `json:"payment_status"`
	TransactionReference string     `json:"transaction_reference,omitempty"`
	CCEmails             []string   `json:"cc_emails,omitempty"`
	ProcessedBy          string     `json:"processed_by,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	DeletedAt            *time.Time `json:"deleted_at,omitempty"`
}

// PaymentResponseFromDomain converts a payment aggregate to its API view
func PaymentResponseFromDomain(p *domainbilling.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID.String(),
		PaymentReference:     p.PaymentReference,
		ReceiptNumber:        p.ReceiptNumber,
		BookingType:          string(p.BookingKind),
		BookingID:            p.BookingID.String(),
		BookingReference:     p.BookingReference,
		PaymentDate:          p.PaymentDate,
		PaymentAmount:        p.Amount.Amount().StringFixed(2),
		VATRate:              p.VATRate.String(),
		VATAmount:            p.VATAmount.Amount().StringFixed(2),
		TotalAmount:          p.TotalAmount.Amount().StringFixed(2),
		Currency:             p.Amount.Currency(),
		PaymentMethod:        p.Method,
		PaymentStatus:        string(p.Status),
		TransactionReference: p.TransactionReference,
		CCEmails:             p.CCEmails,
		ProcessedBy:          p.ProcessedBy,
		Notes:                p.Notes,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		DeletedAt:            p.DeletedAt,
	}
}

// FinancialSummaryResponse is the API view of a booking's derived
// financial fields.
type FinancialSummaryResponse struct {
	AmountPaid      string     `json:"amount_paid"`
	AmountDue       string     `json:"amount_due"`
	VATRate         string     `json:"vat_rate"`
	VATAmount       string     `json:"vat_amount"`
	TotalWithVAT    string     `json:"total_with_vat"`
	LastPaymentDate *time.Time `json:"last_payment_date"`
}

// BookingFinanceResponse is the finance view of one booking account
type BookingFinanceResponse struct {
	BookingType      string                   `json:"booking_type"`
	BookingID        string                   `json:"booking_id"`
	BookingReference string                   `json:"booking_reference"`
	TotalAmount      string                   `json:"total_amount"`
	DepositRequired  *string                  `json:"deposit_required,omitempty"`
	DepositPaid      *string                  `json:"deposit_paid,omitempty"`
	Financials       FinancialSummaryResponse `json:"financials"`
	Payments         []PaymentResponse        `json:"payments"`
}

// BookingFinanceResponseFromDomain converts the application view to
// its API representation.
func BookingFinanceResponseFromDomain(view *billing.BookingFinance) BookingFinanceResponse {
	account := view.Account
	resp := BookingFinanceResponse{
		BookingType:      string(account.Kind()),
		BookingID:        account.AccountID().String(),
		BookingReference: account.Reference(),
		TotalAmount:      account.ContractTotal().Amount().StringFixed(2),
		Payments:         make([]PaymentResponse, len(view.Payments)),
	}

	var summary domainbilling.FinancialSummary
	switch a := account.(type) {
	case *domainbilling.RoomBooking:
		summary = a.Financials
	case *domainbilling.ConferenceInquiry:
		summary = a.Financials
		deposit := a.Deposit.Amount().StringFixed(2)
		depositPaid := a.DepositPaid.Amount().StringFixed(2)
		resp.DepositRequired = &deposit
		resp.DepositPaid = &depositPaid
	}

	resp.Financials = FinancialSummaryResponse{
		AmountPaid:      summary.AmountPaid.Amount().StringFixed(2),
		AmountDue:       summary.AmountDue.Amount().StringFixed(2),
		VATRate:         summary.VATRate.String(),
		VATAmount:       summary.VATAmount.Amount().StringFixed(2),
		TotalWithVAT:    summary.TotalWithVAT.Amount().StringFixed(2),
		LastPaymentDate: summary.LastPaymentDate,
	}
	for i, p := range view.Payments {
		resp.Payments[i] = PaymentResponseFromDomain(p)
	}
	return resp
}

// SettingsResponse is the API view of the global payment settings
type SettingsResponse struct {
	VATEnabled bool      `json:"vat_enabled"`
	VATRate    string    `json:"vat_rate"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SettingsResponseFromDomain converts the settings aggregate to its API view
func SettingsResponseFromDomain(s *domainbilling.PaymentSettings) SettingsResponse {
	return SettingsResponse{
		VATEnabled: s.VATEnabled,
		VATRate:    s.VATRate.String(),
		UpdatedAt:  s.UpdatedAt,
	}
}
