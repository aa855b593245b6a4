// Package pricing provides a closed-form Black-Scholes approximation of
// option Greeks. All functions are pure and never return an error: inputs
// that make the math degenerate (zero volatility, non-positive prices,
// overflow) yield fixed fallback constants so that bad market data can never
// crash the analysis pipeline.
package pricing

import (
	"math"

	"github.com/rs/zerolog"

	"condor-trader/internal/models"
)

// DefaultRiskFreeRate approximates the short-term rate; it is not
// market-observed.
const DefaultRiskFreeRate = 0.045

// riskFreeRate is the continuously-compounded annual rate used by all
// closed forms. Set once at startup from config.
var riskFreeRate = DefaultRiskFreeRate

// SetRiskFreeRate overrides the assumed risk-free rate. Rates outside [0, 1]
// are ignored.
func SetRiskFreeRate(r float64) {
	if r >= 0 && r <= 1 {
		riskFreeRate = r
	}
}

// Fallback constants returned when the inputs are numerically degenerate.
const (
	FallbackDelta = 0.5 // magnitude; sign follows the option side
	FallbackGamma = 0.01
	FallbackTheta = -0.05
	FallbackVega  = 0.15
	FallbackRho   = 0.01
)

// warnLog receives degenerate-input warnings. Defaults to a nop logger;
// callers that want visibility install one via SetLogger.
var warnLog = zerolog.Nop()

// SetLogger installs the logger used for degenerate-input warnings.
func SetLogger(l zerolog.Logger) {
	warnLog = l
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// d1d2 computes the Black-Scholes d1 and d2 terms with T in days.
// ok is false when the inputs cannot produce finite values.
func d1d2(spot, strike, days, sigma float64) (d1, d2 float64, ok bool) {
	if spot <= 0 || strike <= 0 || sigma <= 0 || days <= 0 {
		return 0, 0, false
	}
	t := days / 365.0
	sqrtT := sigma * math.Sqrt(t)
	d1 = (math.Log(spot/strike) + (riskFreeRate+0.5*sigma*sigma)*t) / sqrtT
	d2 = d1 - sqrtT
	if math.IsNaN(d1) || math.IsInf(d1, 0) {
		return 0, 0, false
	}
	return d1, d2, true
}

func warnDegenerate(greek string, spot, strike, days, sigma float64) {
	warnLog.Warn().
		Str("greek", greek).
		Float64("spot", spot).
		Float64("strike", strike).
		Float64("dte", days).
		Float64("iv", sigma).
		Msg("Degenerate pricing inputs, using fallback")
}

// Delta returns the option delta. At or past expiry it collapses to the
// step function: 1 for an in-the-money call, -1 for an in-the-money put,
// 0 otherwise.
func Delta(spot, strike, days, sigma float64, side models.OptionSide) float64 {
	if days <= 0 {
		if side == models.Call {
			if spot > strike {
				return 1.0
			}
			return 0.0
		}
		if spot < strike {
			return -1.0
		}
		return 0.0
	}

	d1, _, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("delta", spot, strike, days, sigma)
		if side == models.Call {
			return FallbackDelta
		}
		return -FallbackDelta
	}
	if side == models.Call {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// Gamma returns the option gamma, identical for calls and puts.
func Gamma(spot, strike, days, sigma float64) float64 {
	if days <= 0 {
		return 0.0
	}
	d1, _, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("gamma", spot, strike, days, sigma)
		return FallbackGamma
	}
	g := normPDF(d1) / (spot * sigma * math.Sqrt(days/365.0))
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return FallbackGamma
	}
	return g
}

// Theta returns daily time decay (annual theta divided by 365). Negative
// for long options.
func Theta(spot, strike, days, sigma float64, side models.OptionSide) float64 {
	if days <= 0 {
		return 0.0
	}
	d1, d2, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("theta", spot, strike, days, sigma)
		return FallbackTheta
	}
	t := days / 365.0
	decay := -spot * normPDF(d1) * sigma / (2 * math.Sqrt(t))
	carry := riskFreeRate * strike * math.Exp(-riskFreeRate*t)

	var theta float64
	if side == models.Call {
		theta = decay - carry*normCDF(d2)
	} else {
		theta = decay + carry*normCDF(-d2)
	}
	theta /= 365.0
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return FallbackTheta
	}
	return theta
}

// Vega returns sensitivity to volatility per one percentage point of vol,
// identical for calls and puts.
func Vega(spot, strike, days, sigma float64) float64 {
	if days <= 0 {
		return 0.0
	}
	d1, _, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("vega", spot, strike, days, sigma)
		return FallbackVega
	}
	v := spot * normPDF(d1) * math.Sqrt(days/365.0) / 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FallbackVega
	}
	return v
}

// Rho returns sensitivity to the risk-free rate per one percentage point.
func Rho(spot, strike, days, sigma float64, side models.OptionSide) float64 {
	if days <= 0 {
		return 0.0
	}
	_, d2, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("rho", spot, strike, days, sigma)
		return FallbackRho
	}
	t := days / 365.0
	discounted := strike * t * math.Exp(-riskFreeRate*t) / 100
	var rho float64
	if side == models.Call {
		rho = discounted * normCDF(d2)
	} else {
		rho = -discounted * normCDF(-d2)
	}
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		return FallbackRho
	}
	return rho
}

// Price returns the Black-Scholes theoretical value of the contract. At or
// past expiry, or on degenerate inputs, it collapses to intrinsic value.
func Price(spot, strike, days, sigma float64, side models.OptionSide) float64 {
	intrinsic := func() float64 {
		if side == models.Call {
			return math.Max(spot-strike, 0)
		}
		return math.Max(strike-spot, 0)
	}
	if days <= 0 {
		return intrinsic()
	}
	d1, d2, ok := d1d2(spot, strike, days, sigma)
	if !ok {
		warnDegenerate("price", spot, strike, days, sigma)
		return intrinsic()
	}
	t := days / 365.0
	discounted := strike * math.Exp(-riskFreeRate*t)
	var p float64
	if side == models.Call {
		p = spot*normCDF(d1) - discounted*normCDF(d2)
	} else {
		p = discounted*normCDF(-d2) - spot*normCDF(-d1)
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return intrinsic()
	}
	return p
}

// Greeks computes the full sensitivity tuple for one contract.
func Greeks(spot, strike, days, sigma float64, side models.OptionSide) models.Greeks {
	return models.Greeks{
		Delta: Delta(spot, strike, days, sigma, side),
		Gamma: Gamma(spot, strike, days, sigma),
		Theta: Theta(spot, strike, days, sigma, side),
		Vega:  Vega(spot, strike, days, sigma),
		Rho:   Rho(spot, strike, days, sigma, side),
	}
}
