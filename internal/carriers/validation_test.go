package carriers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

func validCard() rates.CarrierRate {
	return rates.CarrierRate{
		Carrier: "UPS",
		Enabled: true,
		Tiers: map[rates.Speed]rates.SpeedTier{
			rates.SpeedStandard: {PerKgAED: 18, MinChargeAED: 55, TransitDays: 7},
			rates.SpeedExpress:  {PerKgAED: 30, MinChargeAED: 90, TransitDays: 3},
		},
		FuelPct:            11,
		RemoteSurchargeAED: 75,
		RemotePrefixes:     []string{"X0"},
	}
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, validateRate(validCard()))

	cases := []struct {
		name   string
		mutate func(*rates.CarrierRate)
	}{
		{"blank carrier", func(c *rates.CarrierRate) { c.Carrier = "  " }},
		{"missing express tier", func(c *rates.CarrierRate) { delete(c.Tiers, rates.SpeedExpress) }},
		{"negative per-kg", func(c *rates.CarrierRate) {
			tier := c.Tiers[rates.SpeedStandard]
			tier.PerKgAED = -1
			c.Tiers[rates.SpeedStandard] = tier
		}},
		{"zero-priced tier", func(c *rates.CarrierRate) {
			c.Tiers[rates.SpeedExpress] = rates.SpeedTier{TransitDays: 3}
		}},
		{"negative transit days", func(c *rates.CarrierRate) {
			tier := c.Tiers[rates.SpeedStandard]
			tier.TransitDays = -2
			c.Tiers[rates.SpeedStandard] = tier
		}},
		{"unknown speed key", func(c *rates.CarrierRate) {
			c.Tiers["overnight"] = rates.SpeedTier{PerKgAED: 50, MinChargeAED: 120}
		}},
		{"fuel above 100", func(c *rates.CarrierRate) { c.FuelPct = 101 }},
		{"negative surcharge", func(c *rates.CarrierRate) { c.RemoteSurchargeAED = -5 }},
		{"blank prefix", func(c *rates.CarrierRate) { c.RemotePrefixes = []string{" "} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			tc.mutate(&card)
			assert.ErrorIs(t, validateRate(card), rates.ErrConfig)
		})
	}
}
