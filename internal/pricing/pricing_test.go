package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"condor-trader/internal/models"
)

func validInputs() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(50.0, 2000.0),  // spot
		gen.Float64Range(50.0, 2000.0),  // strike
		gen.Float64Range(0.5, 365.0),    // days
		gen.Float64Range(0.01, 2.0),     // sigma
	)
}

func TestProperty_DeltaWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call delta in [0,1], put delta in [-1,0]", prop.ForAll(
		func(vals []interface{}) bool {
			spot := vals[0].(float64)
			strike := vals[1].(float64)
			days := vals[2].(float64)
			sigma := vals[3].(float64)

			call := Delta(spot, strike, days, sigma, models.Call)
			put := Delta(spot, strike, days, sigma, models.Put)

			return call >= 0 && call <= 1 && put >= -1 && put <= 0
		},
		validInputs(),
	))

	properties.TestingRun(t)
}

func TestProperty_PutCallDeltaParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call delta minus put delta equals 1", prop.ForAll(
		func(vals []interface{}) bool {
			spot := vals[0].(float64)
			strike := vals[1].(float64)
			days := vals[2].(float64)
			sigma := vals[3].(float64)

			call := Delta(spot, strike, days, sigma, models.Call)
			put := Delta(spot, strike, days, sigma, models.Put)

			return math.Abs(call-put-1) < 1e-9
		},
		validInputs(),
	))

	properties.TestingRun(t)
}

func TestProperty_CallDeltaDecreasesWithStrike(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call delta is non-increasing in strike", prop.ForAll(
		func(vals []interface{}) bool {
			spot := vals[0].(float64)
			strike := vals[1].(float64)
			days := vals[2].(float64)
			sigma := vals[3].(float64)

			lower := Delta(spot, strike, days, sigma, models.Call)
			higher := Delta(spot, strike+25, days, sigma, models.Call)

			return higher <= lower+1e-9
		},
		validInputs(),
	))

	properties.TestingRun(t)
}

func TestProperty_DegenerateInputsNeverNaN(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	// Inputs deliberately include zero and negative values for every
	// parameter.
	properties.Property("every Greek is finite for any input", prop.ForAll(
		func(vals []interface{}) bool {
			spot := vals[0].(float64)
			strike := vals[1].(float64)
			days := vals[2].(float64)
			sigma := vals[3].(float64)

			for _, side := range []models.OptionSide{models.Call, models.Put} {
				g := Greeks(spot, strike, days, sigma, side)
				for _, v := range []float64{g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						return false
					}
				}
				p := Price(spot, strike, days, sigma, side)
				if math.IsNaN(p) || math.IsInf(p, 0) {
					return false
				}
			}
			return true
		},
		gopter.CombineGens(
			gen.Float64Range(-100.0, 2000.0),
			gen.Float64Range(-100.0, 2000.0),
			gen.Float64Range(-30.0, 365.0),
			gen.Float64Range(-1.0, 3.0),
		),
	))

	properties.TestingRun(t)
}

func TestDeltaAtExpiry(t *testing.T) {
	tests := []struct {
		name   string
		spot   float64
		strike float64
		side   models.OptionSide
		want   float64
	}{
		{"ITM call", 110, 100, models.Call, 1.0},
		{"OTM call", 90, 100, models.Call, 0.0},
		{"ATM call", 100, 100, models.Call, 0.0},
		{"ITM put", 90, 100, models.Put, -1.0},
		{"OTM put", 110, 100, models.Put, 0.0},
		{"ATM put", 100, 100, models.Put, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(tt.spot, tt.strike, 0, 0.2, tt.side)
			if got != tt.want {
				t.Errorf("Delta(%v, %v, 0, 0.2, %v) = %v, want %v",
					tt.spot, tt.strike, tt.side, got, tt.want)
			}
		})
	}
}

func TestDeltaConvergesToStepNearExpiry(t *testing.T) {
	// With almost no time left, an ITM call delta approaches 1 and an OTM
	// call delta approaches 0.
	itm := Delta(110, 100, 0.01, 0.2, models.Call)
	if itm < 0.99 {
		t.Errorf("ITM call delta near expiry = %v, want close to 1", itm)
	}
	otm := Delta(90, 100, 0.01, 0.2, models.Call)
	if otm > 0.01 {
		t.Errorf("OTM call delta near expiry = %v, want close to 0", otm)
	}
}

func TestFallbackConstants(t *testing.T) {
	tests := []struct {
		name   string
		spot   float64
		strike float64
		days   float64
		sigma  float64
	}{
		{"zero sigma", 100, 100, 30, 0},
		{"negative sigma", 100, 100, 30, -0.5},
		{"zero strike", 100, 0, 30, 0.2},
		{"negative spot", -100, 100, 30, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delta(tt.spot, tt.strike, tt.days, tt.sigma, models.Call); got != FallbackDelta {
				t.Errorf("call Delta = %v, want fallback %v", got, FallbackDelta)
			}
			if got := Delta(tt.spot, tt.strike, tt.days, tt.sigma, models.Put); got != -FallbackDelta {
				t.Errorf("put Delta = %v, want fallback %v", got, -FallbackDelta)
			}
			if got := Gamma(tt.spot, tt.strike, tt.days, tt.sigma); got != FallbackGamma {
				t.Errorf("Gamma = %v, want fallback %v", got, FallbackGamma)
			}
			if got := Theta(tt.spot, tt.strike, tt.days, tt.sigma, models.Call); got != FallbackTheta {
				t.Errorf("Theta = %v, want fallback %v", got, FallbackTheta)
			}
			if got := Vega(tt.spot, tt.strike, tt.days, tt.sigma); got != FallbackVega {
				t.Errorf("Vega = %v, want fallback %v", got, FallbackVega)
			}
			if got := Rho(tt.spot, tt.strike, tt.days, tt.sigma, models.Call); got != FallbackRho {
				t.Errorf("Rho = %v, want fallback %v", got, FallbackRho)
			}
		})
	}
}

func TestThetaIsNegativeForATMOptions(t *testing.T) {
	for _, side := range []models.OptionSide{models.Call, models.Put} {
		theta := Theta(580, 580, 30, 0.2, side)
		if theta >= 0 {
			t.Errorf("ATM %s theta = %v, want negative", side, theta)
		}
	}
}

func TestPriceIntrinsicAtExpiry(t *testing.T) {
	if got := Price(110, 100, 0, 0.2, models.Call); got != 10 {
		t.Errorf("expired ITM call price = %v, want 10", got)
	}
	if got := Price(110, 100, 0, 0.2, models.Put); got != 0 {
		t.Errorf("expired OTM put price = %v, want 0", got)
	}
}
