package invoices

import (
	"time"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

// Status enumerates invoice payment states.
type Status string

const (
	// StatusIssued means payment is outstanding.
	StatusIssued Status = "issued"
	// StatusPaid means the invoice was settled.
	StatusPaid Status = "paid"
)

// Invoice bills a user for one confirmed quote option.
type Invoice struct {
	ID             int64           `json:"id"`
	InvoiceNo      string          `json:"invoice_no"`
	UserID         int64           `json:"user_id"`
	QuoteID        string          `json:"quote_id"`
	Carrier        string          `json:"carrier"`
	Speed          rates.Speed     `json:"speed"`
	Breakdown      rates.Breakdown `json:"breakdown"`
	TotalAED       float64         `json:"total_aed"`
	Status         Status          `json:"status"`
	IssuedAt       time.Time       `json:"issued_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	RecipientEmail string          `json:"recipient_email"`
}
