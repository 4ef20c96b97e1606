package rates

import (
	"errors"
	"math"
	"testing"
)

func mustDims(t *testing.T, l, w, h float64) Dimensions {
	t.Helper()
	d, err := NewDimensions(l, w, h)
	if err != nil {
		t.Fatalf("NewDimensions(%v,%v,%v): %v", l, w, h, err)
	}
	return d
}

func testConfigs() []CarrierRate {
	return []CarrierRate{
		{
			Carrier: "DHL",
			Enabled: true,
			Tiers: map[Speed]SpeedTier{
				SpeedStandard: {PerKgAED: 20, MinChargeAED: 60, TransitDays: 6},
				SpeedExpress:  {PerKgAED: 32, MinChargeAED: 95, TransitDays: 3},
			},
			FuelPct:            10,
			RemoteSurchargeAED: 85,
			RemotePrefixes:     []string{"PO3"},
		},
		{
			Carrier: "Aramex",
			Enabled: true,
			Tiers: map[Speed]SpeedTier{
				SpeedStandard: {PerKgAED: 16, MinChargeAED: 50, TransitDays: 8},
				SpeedExpress:  {PerKgAED: 28, MinChargeAED: 80, TransitDays: 4},
			},
			FuelPct:            12.5,
			RemoteSurchargeAED: 70,
		},
	}
}

func TestChargeableWeight(t *testing.T) {
	noDims := Dimensions{}
	cases := []struct {
		name   string
		actual float64
		dims   Dimensions
		want   float64
	}{
		{"actual only", 4.2, noDims, 4.2},
		{"zero weight", 0, noDims, 0},
		{"volumetric wins", 1, mustDims(t, 50, 40, 30), 12},
		{"actual wins", 25, mustDims(t, 50, 40, 30), 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ChargeableWeight(tc.actual, tc.dims)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestChargeableWeightRejectsBadInput(t *testing.T) {
	if _, err := ChargeableWeight(-1, Dimensions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative weight: got %v", err)
	}
	if _, err := ChargeableWeight(math.NaN(), Dimensions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("NaN weight: got %v", err)
	}
	if _, err := NewDimensions(50, 0, 30); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("partial dims must not construct")
	}
}

func TestInsurance(t *testing.T) {
	cases := []struct {
		declared float64
		want     float64
	}{
		{0, 0},
		{-5, 0},
		{1000, 10},
		{2000, 10},
		{5000, 25},
		{123456.78, 617.28},
	}
	for _, tc := range cases {
		got, err := Insurance(tc.declared)
		if err != nil {
			t.Fatalf("Insurance(%v): %v", tc.declared, err)
		}
		if got != tc.want {
			t.Fatalf("Insurance(%v) = %v, want %v", tc.declared, got, tc.want)
		}
	}
	if _, err := Insurance(math.Inf(1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("infinite declared value: got %v", err)
	}
}

func TestIsRemote(t *testing.T) {
	cases := []struct {
		name    string
		country string
		postal  string
		extras  []string
		want    bool
	}{
		{"empty postal", "GB", "", nil, false},
		{"uk highlands", "GB", "IV12 4AB", nil, true},
		{"uk mainland", "GB", "SW1A 1AA", nil, false},
		{"case and spaces", "gb", " hs1 2bb ", nil, true},
		{"canadian territory", "CA", "X0A0H0", nil, true},
		{"argyll island", "GB", "PA20 0BD", nil, true},
		{"paisley mainland", "GB", "PA1 2AB", nil, false},
		{"paisley mainland upper bound", "GB", "PA19 1AA", nil, false},
		{"carrier extra", "AE", "9981", []string{"99"}, true},
		{"extra normalized", "AE", "ab 12", []string{" AB1 "}, true},
		{"no match", "AE", "12345", []string{"99"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRemote(tc.country, tc.postal, tc.extras); got != tc.want {
				t.Fatalf("IsRemote(%q,%q,%v) = %v, want %v", tc.country, tc.postal, tc.extras, got, tc.want)
			}
		})
	}
}

func TestQuoteOrderingAndBreakdown(t *testing.T) {
	res, err := Quote(Request{
		DestinationCountry: "AE",
		DestinationPostal:  "12345",
		ActualWeightKg:     5,
		Speed:              SpeedStandard,
		DeclaredValueAED:   5000,
	}, testConfigs())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(res.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(res.Options))
	}
	if res.CheapestIndex != 0 {
		t.Fatalf("cheapest index = %d", res.CheapestIndex)
	}
	for i := 1; i < len(res.Options); i++ {
		if res.Options[i].TotalAED < res.Options[i-1].TotalAED {
			t.Fatalf("options not sorted ascending: %v", res.Options)
		}
	}
	// Aramex standard: base max(50, 5*16)=80, fuel 10, insurance 25.
	cheapest := res.Options[0]
	if cheapest.Carrier != "Aramex" {
		t.Fatalf("cheapest carrier = %s", cheapest.Carrier)
	}
	if cheapest.Breakdown.Base != 80 || cheapest.Breakdown.Fuel != 10 || cheapest.Breakdown.Insurance != 25 {
		t.Fatalf("unexpected breakdown: %+v", cheapest.Breakdown)
	}
	for _, opt := range res.Options {
		sum := opt.Breakdown.Base + opt.Breakdown.Fuel + opt.Breakdown.Remote + opt.Breakdown.Insurance
		if math.Abs(sum-opt.TotalAED) > 0.01 {
			t.Fatalf("breakdown sum %v != total %v for %s", sum, opt.TotalAED, opt.Carrier)
		}
	}
}

func TestQuoteMinimumChargeApplies(t *testing.T) {
	res, err := Quote(Request{
		DestinationCountry: "AE",
		ActualWeightKg:     0.5,
		Speed:              SpeedStandard,
	}, testConfigs())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	// 0.5kg * 16 = 8 AED, below Aramex's 50 minimum.
	if res.Options[0].Breakdown.Base != 50 {
		t.Fatalf("minimum charge not applied: %+v", res.Options[0].Breakdown)
	}
}

func TestQuoteRemoteSurchargePerCarrier(t *testing.T) {
	// PO3 is configured as remote only for DHL.
	res, err := Quote(Request{
		DestinationCountry: "GB",
		DestinationPostal:  "PO31 7AA",
		ActualWeightKg:     5,
		Speed:              SpeedStandard,
	}, testConfigs())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	byCarrier := map[string]Option{}
	for _, opt := range res.Options {
		byCarrier[opt.Carrier] = opt
	}
	if byCarrier["DHL"].Breakdown.Remote != 85 {
		t.Fatalf("DHL remote = %v", byCarrier["DHL"].Breakdown.Remote)
	}
	if byCarrier["Aramex"].Breakdown.Remote != 0 {
		t.Fatalf("Aramex remote = %v", byCarrier["Aramex"].Breakdown.Remote)
	}
}

func TestQuoteBothSpeedsWhenUnspecified(t *testing.T) {
	res, err := Quote(Request{DestinationCountry: "AE", ActualWeightKg: 2}, testConfigs())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(res.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(res.Options))
	}
}

func TestQuoteDisabledCarrierExcluded(t *testing.T) {
	configs := testConfigs()
	configs[0].Enabled = false
	res, err := Quote(Request{DestinationCountry: "AE", ActualWeightKg: 2, Speed: SpeedExpress}, configs)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	for _, opt := range res.Options {
		if opt.Carrier == "DHL" {
			t.Fatalf("disabled carrier still quoted")
		}
	}
}

func TestQuoteConfigErrors(t *testing.T) {
	if _, err := Quote(Request{ActualWeightKg: 1, Speed: SpeedStandard}, nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("no carriers: got %v", err)
	}
	configs := testConfigs()
	configs[1].Enabled = false
	configs[0].Enabled = false
	if _, err := Quote(Request{ActualWeightKg: 1, Speed: SpeedStandard}, configs); !errors.Is(err, ErrConfig) {
		t.Fatalf("all disabled: got %v", err)
	}
	broken := testConfigs()
	delete(broken[0].Tiers, SpeedExpress)
	if _, err := Quote(Request{ActualWeightKg: 1, Speed: SpeedStandard}, broken); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing tier: got %v", err)
	}
	negative := testConfigs()
	tier := negative[0].Tiers[SpeedStandard]
	tier.PerKgAED = -3
	negative[0].Tiers[SpeedStandard] = tier
	if _, err := Quote(Request{ActualWeightKg: 1, Speed: SpeedStandard}, negative); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative rate: got %v", err)
	}
}

func TestQuoteTieBreakDeterministic(t *testing.T) {
	configs := []CarrierRate{
		{
			Carrier: "UPS",
			Enabled: true,
			Tiers: map[Speed]SpeedTier{
				SpeedStandard: {PerKgAED: 10, MinChargeAED: 40},
				SpeedExpress:  {PerKgAED: 10, MinChargeAED: 40},
			},
		},
		{
			Carrier: "DHL",
			Enabled: true,
			Tiers: map[Speed]SpeedTier{
				SpeedStandard: {PerKgAED: 10, MinChargeAED: 40},
				SpeedExpress:  {PerKgAED: 10, MinChargeAED: 40},
			},
		},
	}
	res, err := Quote(Request{ActualWeightKg: 2}, configs)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	want := []struct {
		carrier string
		speed   Speed
	}{
		{"DHL", SpeedExpress},
		{"DHL", SpeedStandard},
		{"UPS", SpeedExpress},
		{"UPS", SpeedStandard},
	}
	for i, w := range want {
		if res.Options[i].Carrier != w.carrier || res.Options[i].Speed != w.speed {
			t.Fatalf("tie-break order wrong at %d: %+v", i, res.Options[i])
		}
	}
}
