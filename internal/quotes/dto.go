package quotes

// CreateQuoteRequest is the JSON body for POST /quotes. Dimensions must
// be provided together or not at all.
type CreateQuoteRequest struct {
	OriginCountry      string   `json:"origin_country" validate:"required,len=2,alpha"`
	DestinationCountry string   `json:"destination_country" validate:"required,len=2,alpha"`
	DestinationPostal  string   `json:"destination_postal,omitempty" validate:"omitempty,max=16"`
	ActualWeightKg     float64  `json:"actual_weight_kg" validate:"required,gt=0"`
	LengthCm           *float64 `json:"length_cm,omitempty"`
	WidthCm            *float64 `json:"width_cm,omitempty"`
	HeightCm           *float64 `json:"height_cm,omitempty"`
	Speed              string   `json:"speed" validate:"required,oneof=standard express"`
	DeclaredValueAED   float64  `json:"declared_value_aed,omitempty" validate:"gte=0"`
}

// ChooseOptionRequest is the JSON body for POST /quotes/{id}/choose.
type ChooseOptionRequest struct {
	OptionIndex int `json:"option_index" validate:"gte=0"`
}
