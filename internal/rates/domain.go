package rates

import "errors"

// Speed enumerates supported delivery speed tiers.
type Speed string

const (
	// SpeedStandard is the default economy tier.
	SpeedStandard Speed = "standard"
	// SpeedExpress is the priority tier.
	SpeedExpress Speed = "express"
)

// Valid reports whether s is a known speed tier.
func (s Speed) Valid() bool {
	return s == SpeedStandard || s == SpeedExpress
}

// Dimensions is an immutable L/W/H triple in centimetres. The zero value
// means "not provided"; a populated value always carries all three sides.
type Dimensions struct {
	length float64
	width  float64
	height float64
	set    bool
}

// NewDimensions builds a complete dimension triple. All sides must be
// positive and finite.
func NewDimensions(length, width, height float64) (Dimensions, error) {
	for _, v := range []float64{length, width, height} {
		if !isFinite(v) || v <= 0 {
			return Dimensions{}, ErrInvalidInput
		}
	}
	return Dimensions{length: length, width: width, height: height, set: true}, nil
}

// IsSet reports whether the triple was provided.
func (d Dimensions) IsSet() bool { return d.set }

// Sides returns length, width and height in centimetres.
func (d Dimensions) Sides() (length, width, height float64) {
	return d.length, d.width, d.height
}

// SpeedTier holds the per-kilogram pricing for one speed of one carrier.
type SpeedTier struct {
	PerKgAED     float64 `json:"per_kg_aed"`
	MinChargeAED float64 `json:"min_charge_aed"`
	TransitDays  int     `json:"transit_days"`
}

// CarrierRate is the rate card for a single carrier as configured by an
// administrator. The engine treats it as read-only.
type CarrierRate struct {
	Carrier            string              `json:"carrier"`
	Enabled            bool                `json:"enabled"`
	Tiers              map[Speed]SpeedTier `json:"tiers"`
	FuelPct            float64             `json:"fuel_pct"`
	RemoteSurchargeAED float64             `json:"remote_surcharge_aed"`
	RemotePrefixes     []string            `json:"remote_prefixes,omitempty"`
}

// Request captures the shipment attributes a quote is computed from.
type Request struct {
	OriginCountry      string
	DestinationCountry string
	DestinationPostal  string
	ActualWeightKg     float64
	Dims               Dimensions
	Speed              Speed
	DeclaredValueAED   float64
}

// Breakdown splits an option total into its chargeable components. All
// amounts are AED.
type Breakdown struct {
	Base      float64 `json:"base"`
	Fuel      float64 `json:"fuel"`
	Remote    float64 `json:"remote"`
	Insurance float64 `json:"insurance"`
}

// Option is one carrier/speed priced alternative within a quote.
type Option struct {
	Carrier     string    `json:"carrier"`
	Speed       Speed     `json:"speed"`
	TransitDays int       `json:"transit_days"`
	TotalAED    float64   `json:"total_aed"`
	Breakdown   Breakdown `json:"breakdown"`
}

// Result is the ordered option list for one request.
type Result struct {
	Options       []Option `json:"options"`
	CheapestIndex int      `json:"cheapest_index"`
}

var (
	// ErrInvalidInput flags negative or non-finite shipment attributes.
	ErrInvalidInput = errors.New("rates: invalid shipment input")
	// ErrConfig flags unusable carrier rate configuration.
	ErrConfig = errors.New("rates: invalid carrier configuration")
)
