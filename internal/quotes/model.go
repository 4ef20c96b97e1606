package quotes

import (
	"time"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

// Shipment is the persisted snapshot of the request a quote was priced
// from. Dimensions are flattened to nullable columns; a row either has
// all three or none.
type Shipment struct {
	OriginCountry      string      `json:"origin_country"`
	DestinationCountry string      `json:"destination_country"`
	DestinationPostal  string      `json:"destination_postal,omitempty"`
	ActualWeightKg     float64     `json:"actual_weight_kg"`
	LengthCm           *float64    `json:"length_cm,omitempty"`
	WidthCm            *float64    `json:"width_cm,omitempty"`
	HeightCm           *float64    `json:"height_cm,omitempty"`
	Speed              rates.Speed `json:"speed"`
	DeclaredValueAED   float64     `json:"declared_value_aed,omitempty"`
}

// Quote is a priced set of carrier options for one shipment request.
// ChosenIndex is nil until the user confirms an option; nothing else is
// ever mutated after creation.
type Quote struct {
	ID            string         `json:"id"`
	UserID        int64          `json:"user_id"`
	Shipment      Shipment       `json:"shipment"`
	Options       []rates.Option `json:"options"`
	CheapestIndex int            `json:"cheapest_index"`
	ChosenIndex   *int           `json:"chosen_index,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
