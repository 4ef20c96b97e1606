package packages

import "time"

// Status enumerates the package lifecycle. Transitions only move
// forward; see CanTransition.
type Status string

const (
	// StatusExpected means the user announced the package but the
	// warehouse has not received it yet.
	StatusExpected Status = "expected"
	// StatusReceived means the warehouse checked the package in.
	StatusReceived Status = "received"
	// StatusQuoted means a shipping quote was confirmed for it.
	StatusQuoted Status = "quoted"
	// StatusShipped means it left the warehouse with a carrier.
	StatusShipped Status = "shipped"
	// StatusDelivered is terminal.
	StatusDelivered Status = "delivered"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusExpected, StatusReceived, StatusQuoted, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	allowed := map[Status]Status{
		StatusExpected: StatusReceived,
		StatusReceived: StatusQuoted,
		StatusQuoted:   StatusShipped,
		StatusShipped:  StatusDelivered,
	}
	return allowed[s] == next
}

// Package is an inbound parcel registered by a user.
type Package struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Description     string    `json:"description"`
	Merchant        string    `json:"merchant,omitempty"`
	TrackingInbound string    `json:"tracking_inbound,omitempty"`
	WeightKg        *float64  `json:"weight_kg,omitempty"`
	Status          Status    `json:"status"`
	QuoteID         *string   `json:"quote_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Event is one entry in a package's tracking history.
type Event struct {
	ID        int64     `json:"id"`
	PackageID int64     `json:"package_id"`
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
