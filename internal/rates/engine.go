package rates

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	volumetricDivisor = 5000.0
	insuranceRate     = 0.005
	insuranceFloorAED = 10.0
)

// remoteDefaults maps destination country codes to postal prefixes that
// carriers uniformly bill as remote: Scottish highlands and islands for
// the UK, the northern territories for Canada. Carrier rate cards extend
// this list per carrier.
var remoteDefaults = map[string][]string{
	"GB": gbRemotePrefixes(),
	"CA": {"X0", "Y0", "X1A", "Y1A"},
}

// gbRemotePrefixes builds the UK baseline. Argyll islands are PA20
// through PA78; PA1–PA19 is mainland Paisley and never surcharged, so
// the island districts are listed individually rather than all of PA.
func gbRemotePrefixes() []string {
	prefixes := []string{"HS", "ZE", "KW", "IV", "PH", "KA27", "KA28", "IM", "TR21", "TR22", "TR23", "TR24", "TR25"}
	for i := 20; i <= 78; i++ {
		prefixes = append(prefixes, fmt.Sprintf("PA%d", i))
	}
	return prefixes
}

// ChargeableWeight returns the billing weight in kilograms: the greater
// of actual and volumetric weight. Volumetric weight is zero unless a
// complete dimension triple was provided.
func ChargeableWeight(actualKg float64, dims Dimensions) (float64, error) {
	if !isFinite(actualKg) || actualKg < 0 {
		return 0, fmt.Errorf("%w: actual weight %v", ErrInvalidInput, actualKg)
	}
	volumetric := 0.0
	if dims.IsSet() {
		l, w, h := dims.Sides()
		volumetric = (l * w * h) / volumetricDivisor
	}
	return math.Max(actualKg, volumetric), nil
}

// Insurance computes the ad-valorem insurance fee for a declared value.
// Zero or absent declared value carries no insurance; otherwise the fee
// is 0.5% of the declared value with an AED 10 floor.
func Insurance(declaredValueAED float64) (float64, error) {
	if !isFinite(declaredValueAED) {
		return 0, fmt.Errorf("%w: declared value %v", ErrInvalidInput, declaredValueAED)
	}
	if declaredValueAED <= 0 {
		return 0, nil
	}
	return math.Max(insuranceFloorAED, round2(declaredValueAED*insuranceRate)), nil
}

// IsRemote reports whether the destination postal code falls in a remote
// area for a carrier. Comparison is case and whitespace insensitive; an
// empty postal code is never remote.
func IsRemote(country, postal string, extraPrefixes []string) bool {
	normalized := strings.ToUpper(strings.Join(strings.Fields(postal), ""))
	if normalized == "" {
		return false
	}
	countryKey := strings.ToUpper(strings.TrimSpace(country))
	for _, prefix := range remoteDefaults[countryKey] {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	for _, prefix := range extraPrefixes {
		p := strings.ToUpper(strings.Join(strings.Fields(prefix), ""))
		if p != "" && strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// Quote prices a shipment against every enabled carrier and returns the
// options sorted ascending by total. When req.Speed is empty both tiers
// of every carrier are priced; otherwise only the requested tier.
func Quote(req Request, configs []CarrierRate) (*Result, error) {
	if req.Speed != "" && !req.Speed.Valid() {
		return nil, fmt.Errorf("%w: unknown speed %q", ErrInvalidInput, req.Speed)
	}
	kg, err := ChargeableWeight(req.ActualWeightKg, req.Dims)
	if err != nil {
		return nil, err
	}
	insurance, err := Insurance(req.DeclaredValueAED)
	if err != nil {
		return nil, err
	}

	speeds := []Speed{SpeedStandard, SpeedExpress}
	if req.Speed != "" {
		speeds = []Speed{req.Speed}
	}

	var options []Option
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if err := checkConfig(cfg); err != nil {
			return nil, err
		}
		remote := 0.0
		if IsRemote(req.DestinationCountry, req.DestinationPostal, cfg.RemotePrefixes) {
			remote = cfg.RemoteSurchargeAED
		}
		for _, speed := range speeds {
			tier := cfg.Tiers[speed]
			base := math.Max(tier.MinChargeAED, round2(kg*tier.PerKgAED))
			fuel := round2(base * cfg.FuelPct / 100)
			options = append(options, Option{
				Carrier:     cfg.Carrier,
				Speed:       speed,
				TransitDays: tier.TransitDays,
				TotalAED:    round2(base + fuel + remote + insurance),
				Breakdown: Breakdown{
					Base:      base,
					Fuel:      fuel,
					Remote:    remote,
					Insurance: insurance,
				},
			})
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: no enabled carrier", ErrConfig)
	}

	sort.Slice(options, func(i, j int) bool {
		if options[i].TotalAED != options[j].TotalAED {
			return options[i].TotalAED < options[j].TotalAED
		}
		if options[i].Carrier != options[j].Carrier {
			return options[i].Carrier < options[j].Carrier
		}
		return options[i].Speed < options[j].Speed
	})
	return &Result{Options: options, CheapestIndex: 0}, nil
}

// checkConfig rejects rate cards that would silently produce zero or
// nonsense prices.
func checkConfig(cfg CarrierRate) error {
	if strings.TrimSpace(cfg.Carrier) == "" {
		return fmt.Errorf("%w: carrier name missing", ErrConfig)
	}
	for _, speed := range []Speed{SpeedStandard, SpeedExpress} {
		tier, ok := cfg.Tiers[speed]
		if !ok {
			return fmt.Errorf("%w: %s missing %s tier", ErrConfig, cfg.Carrier, speed)
		}
		if !isFinite(tier.PerKgAED) || tier.PerKgAED < 0 || !isFinite(tier.MinChargeAED) || tier.MinChargeAED < 0 {
			return fmt.Errorf("%w: %s %s tier has negative rate fields", ErrConfig, cfg.Carrier, speed)
		}
		if tier.PerKgAED == 0 && tier.MinChargeAED == 0 {
			return fmt.Errorf("%w: %s %s tier is zero-priced", ErrConfig, cfg.Carrier, speed)
		}
	}
	if !isFinite(cfg.FuelPct) || cfg.FuelPct < 0 {
		return fmt.Errorf("%w: %s fuel percentage invalid", ErrConfig, cfg.Carrier)
	}
	if !isFinite(cfg.RemoteSurchargeAED) || cfg.RemoteSurchargeAED < 0 {
		return fmt.Errorf("%w: %s remote surcharge invalid", ErrConfig, cfg.Carrier)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
