package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotel/backoffice/internal/domain/billing"
	"github.com/hotel/backoffice/internal/domain/shared/valueobject"
)

// PaymentModel is the persistence model for the payment ledger
type PaymentModel struct {
	AggregateModel
	PaymentReference     string          `gorm:"size:32;not null;uniqueIndex"`
	ReceiptNumber        *string         `gorm:"size:32;uniqueIndex"`
	BookingType          string          `gorm:"size:16;not null;index:idx_payments_booking"`
	BookingID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_booking"`
	BookingReference     string          `gorm:"size:64;not null"`
	PaymentDate          time.Time       `gorm:"not null"`
	PaymentAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	VATRate              decimal.Decimal `gorm:"type:numeric(6,3);not null"`
	VATAmount            decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentMethod        string          `gorm:"size:32;not null"`
	PaymentStatus        string          `gorm:"size:32;not null;index"`
	TransactionReference string          `gorm:"size:128"`
	CCEmails             string          `gorm:"size:512"`
	ProcessedBy          string          `gorm:"size:128"`
	Notes                string          `gorm:"type:text"`
	DeletedAt            *time.Time      `gorm:"index"`
}

// TableName returns the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *PaymentModel) ToDomain() *billing.Payment {
	var ccEmails []string
	if m.CCEmails != "" {
		ccEmails = strings.Split(m.CCEmails, ",")
	}
	return &billing.Payment{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		PaymentReference:     m.PaymentReference,
		ReceiptNumber:        m.ReceiptNumber,
		BookingKind:          billing.BookingKind(m.BookingType),
		BookingID:            m.BookingID,
		BookingReference:     m.BookingReference,
		PaymentDate:          m.PaymentDate,
		Amount:               valueobject.NewMoneyMWK(m.PaymentAmount),
		VATRate:              m.VATRate,
		VATAmount:            valueobject.NewMoneyMWK(m.VATAmount),
		TotalAmount:          valueobject.NewMoneyMWK(m.TotalAmount),
		Method:               m.PaymentMethod,
		Status:               billing.PaymentStatus(m.PaymentStatus),
		TransactionReference: m.TransactionReference,
		CCEmails:             ccEmails,
		ProcessedBy:          m.ProcessedBy,
		Notes:                m.Notes,
		DeletedAt:            m.DeletedAt,
	}
}

// PaymentModelFromDomain converts the domain aggregate to its
// persistence model.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		PaymentReference:     p.PaymentReference,
		ReceiptNumber:        p.ReceiptNumber,
		BookingType:          string(p.BookingKind),
		BookingID:            p.BookingID,
		BookingReference:     p.BookingReference,
		PaymentDate:          p.PaymentDate,
		PaymentAmount:        p.Amount.Amount(),
		VATRate:              p.VATRate,
		VATAmount:            p.VATAmount.Amount(),
		TotalAmount:          p.TotalAmount.Amount(),
		PaymentMethod:        p.Method,
		PaymentStatus:        string(p.Status),
		TransactionReference: p.TransactionReference,
		CCEmails:             strings.Join(p.CCEmails, ","),
		ProcessedBy:          p.ProcessedBy,
		Notes:                p.Notes,
		DeletedAt:            p.DeletedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// RoomBookingModel is the persistence model for room bookings.
// Only the derived financial columns are written by this module.
type RoomBookingModel struct {
	AggregateModel
	BookingReference string          `gorm:"size:64;not null;uniqueIndex"`
	GuestName        string          `gorm:"size:128;not null"`
	RoomName         string          `gorm:"size:64"`
	CheckIn          time.Time       `gorm:"not null"`
	CheckOut         time.Time       `gorm:"not null"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AmountPaid       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AmountDue        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	VATRate          decimal.Decimal `gorm:"type:numeric(6,3);not null;default:0"`
	VATAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalWithVAT     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	LastPaymentDate  *time.Time
}

// TableName returns the table name for RoomBookingModel
func (RoomBookingModel) TableName() string {
	return "room_bookings"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *RoomBookingModel) ToDomain() *billing.RoomBooking {
	return &billing.RoomBooking{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BookingReference:  m.BookingReference,
		GuestName:         m.GuestName,
		RoomName:          m.RoomName,
		CheckIn:           m.CheckIn,
		CheckOut:          m.CheckOut,
		TotalAmount:       valueobject.NewMoneyMWK(m.TotalAmount),
		Financials:        financialsToDomain(m.AmountPaid, m.AmountDue, m.VATRate, m.VATAmount, m.TotalWithVAT, m.LastPaymentDate),
	}
}

// RoomBookingModelFromDomain converts the domain aggregate to its
// persistence model.
func RoomBookingModelFromDomain(b *billing.RoomBooking) *RoomBookingModel {
	m := &RoomBookingModel{
		BookingReference: b.BookingReference,
		GuestName:        b.GuestName,
		RoomName:         b.RoomName,
		CheckIn:          b.CheckIn,
		CheckOut:         b.CheckOut,
		TotalAmount:      b.TotalAmount.Amount(),
		AmountPaid:       b.Financials.AmountPaid.Amount(),
		AmountDue:        b.Financials.AmountDue.Amount(),
		VATRate:          b.Financials.VATRate,
		VATAmount:        b.Financials.VATAmount.Amount(),
		TotalWithVAT:     b.Financials.TotalWithVAT.Amount(),
		LastPaymentDate:  b.Financials.LastPaymentDate,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// ConferenceInquiryModel is the persistence model for conference
// inquiries, the deposit-carrying payment owner.
type ConferenceInquiryModel struct {
	AggregateModel
	InquiryReference string          `gorm:"size:64;not null;uniqueIndex"`
	OrganizerName    string          `gorm:"size:128;not null"`
	EventName        string          `gorm:"size:128"`
	EventDate        time.Time       `gorm:"not null"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DepositRequired  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DepositPaid      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AmountDue        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	VATRate          decimal.Decimal `gorm:"type:numeric(6,3);not null;default:0"`
	VATAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalWithVAT     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	LastPaymentDate  *time.Time
}

// TableName returns the table name for ConferenceInquiryModel
func (ConferenceInquiryModel) TableName() string {
	return "conference_inquiries"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *ConferenceInquiryModel) ToDomain() *billing.ConferenceInquiry {
	return &billing.ConferenceInquiry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InquiryReference:  m.InquiryReference,
		OrganizerName:     m.OrganizerName,
		EventName:         m.EventName,
		EventDate:         m.EventDate,
		TotalAmount:       valueobject.NewMoneyMWK(m.TotalAmount),
		Deposit:           valueobject.NewMoneyMWK(m.DepositRequired),
		DepositPaid:       valueobject.NewMoneyMWK(m.DepositPaid),
		Financials:        financialsToDomain(m.AmountPaid, m.AmountDue, m.VATRate, m.VATAmount, m.TotalWithVAT, m.LastPaymentDate),
	}
}

// ConferenceInquiryModelFromDomain converts the domain aggregate to
// its persistence model.
func ConferenceInquiryModelFromDomain(c *billing.ConferenceInquiry) *ConferenceInquiryModel {
	m := &ConferenceInquiryModel{
		InquiryReference: c.InquiryReference,
		OrganizerName:    c.OrganizerName,
		EventName:        c.EventName,
		EventDate:        c.EventDate,
		TotalAmount:      c.TotalAmount.Amount(),
		DepositRequired:  c.Deposit.Amount(),
		DepositPaid:      c.DepositPaid.Amount(),
		AmountPaid:       c.Financials.AmountPaid.Amount(),
		AmountDue:        c.Financials.AmountDue.Amount(),
		VATRate:          c.Financials.VATRate,
		VATAmount:        c.Financials.VATAmount.Amount(),
		TotalWithVAT:     c.Financials.TotalWithVAT.Amount(),
		LastPaymentDate:  c.Financials.LastPaymentDate,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// PaymentSettingsModel is the persistence model for the single global
// payment settings row.
type PaymentSettingsModel struct {
	AggregateModel
	VATEnabled bool            `gorm:"not null;default:true"`
	VATRate    decimal.Decimal `gorm:"type:numeric(6,3);not null"`
}

// TableName returns the table name for PaymentSettingsModel
func (PaymentSettingsModel) TableName() string {
	return "payment_settings"
}

// ToDomain converts the persistence model to the domain aggregate
func (m *PaymentSettingsModel) ToDomain() *billing.PaymentSettings {
	return &billing.PaymentSettings{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		VATEnabled:        m.VATEnabled,
		VATRate:           m.VATRate,
	}
}

// PaymentSettingsModelFromDomain converts the domain aggregate to its
// persistence model.
func PaymentSettingsModelFromDomain(s *billing.PaymentSettings) *PaymentSettingsModel {
	m := &PaymentSettingsModel{
		VATEnabled: s.VATEnabled,
		VATRate:    s.VATRate,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

func financialsToDomain(paid, due, rate, vat, totalWithVAT decimal.Decimal, lastPayment *time.Time) billing.FinancialSummary {
	return billing.FinancialSummary{
		AmountPaid:      valueobject.NewMoneyMWK(paid),
		AmountDue:       valueobject.NewMoneyMWK(due),
		VATRate:         rate,
		VATAmount:       valueobject.NewMoneyMWK(vat),
		TotalWithVAT:    valueobject.NewMoneyMWK(totalWithVAT),
		LastPaymentDate: lastPayment,
	}
}
