package carriers

import (
	"fmt"
	"math"
	"strings"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

// validateRate rejects rate cards the quoting engine would refuse at
// quote time. Catching them at write time keeps bad configuration out
// of the enabled pool entirely.
func validateRate(rate rates.CarrierRate) error {
	if strings.TrimSpace(rate.Carrier) == "" {
		return fmt.Errorf("%w: carrier name is required", rates.ErrConfig)
	}
	for _, speed := range []rates.Speed{rates.SpeedStandard, rates.SpeedExpress} {
		tier, ok := rate.Tiers[speed]
		if !ok {
			return fmt.Errorf("%w: %s tier is required", rates.ErrConfig, speed)
		}
		if badAmount(tier.PerKgAED) || badAmount(tier.MinChargeAED) {
			return fmt.Errorf("%w: %s tier rates must be non-negative", rates.ErrConfig, speed)
		}
		if tier.PerKgAED == 0 && tier.MinChargeAED == 0 {
			return fmt.Errorf("%w: %s tier must set a rate or minimum charge", rates.ErrConfig, speed)
		}
		if tier.TransitDays < 0 {
			return fmt.Errorf("%w: %s transit days must be non-negative", rates.ErrConfig, speed)
		}
	}
	for speed := range rate.Tiers {
		if !speed.Valid() {
			return fmt.Errorf("%w: unknown speed tier %q", rates.ErrConfig, speed)
		}
	}
	if badAmount(rate.FuelPct) || rate.FuelPct > 100 {
		return fmt.Errorf("%w: fuel percentage must be between 0 and 100", rates.ErrConfig)
	}
	if badAmount(rate.RemoteSurchargeAED) {
		return fmt.Errorf("%w: remote surcharge must be non-negative", rates.ErrConfig)
	}
	for _, prefix := range rate.RemotePrefixes {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("%w: remote prefixes must not be blank", rates.ErrConfig)
		}
	}
	return nil
}

func badAmount(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}
