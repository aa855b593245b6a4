package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"condor-trader/internal/models"
)

// barSliceGen generates a series of valid daily bars with OHLC constraints
// enforced.
func barSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(100.0, 1000.0)).Map(func(closes []float64) []models.PriceBar {
		if len(closes) < minLen {
			for len(closes) < minLen {
				closes = append(closes, 500.0)
			}
		}
		bars := make([]models.PriceBar, len(closes))
		base := time.Now().AddDate(0, 0, -len(closes))
		for i, c := range closes {
			open := c
			if i > 0 {
				open = closes[i-1]
			}
			bars[i] = models.PriceBar{
				Timestamp: base.AddDate(0, 0, i),
				Open:      open,
				High:      math.Max(open, c) + 1,
				Low:       math.Min(open, c) - 1,
				Close:     c,
				Volume:    1_000_000,
			}
		}
		return bars
	})
}

func TestProperty_EnrichFillsEveryBar(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("every derived field is finite for every bar", prop.ForAll(
		func(bars []models.PriceBar) bool {
			enriched := Enrich(bars)
			if len(enriched) != len(bars) {
				return false
			}
			for _, b := range enriched {
				for _, v := range []float64{
					b.SMA20, b.BBStd, b.BBUpper, b.BBLower, b.BBWidth,
					b.RSI, b.EMA12, b.EMA26, b.MACD, b.MACDSignal,
					b.MACDHistogram, b.ATR, b.ATRPercent,
				} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						return false
					}
				}
			}
			return true
		},
		barSliceGen(1, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(bars []models.PriceBar) bool {
			for _, b := range Enrich(bars) {
				if b.RSI < 0 || b.RSI > 100 {
					return false
				}
			}
			return true
		},
		barSliceGen(2, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_BollingerBandsOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("BB lower <= SMA <= upper", prop.ForAll(
		func(bars []models.PriceBar) bool {
			for _, b := range Enrich(bars) {
				if b.BBLower > b.SMA20+1e-9 || b.SMA20 > b.BBUpper+1e-9 {
					return false
				}
			}
			return true
		},
		barSliceGen(2, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_ATRNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("ATR and ATR percent are non-negative", prop.ForAll(
		func(bars []models.PriceBar) bool {
			for _, b := range Enrich(bars) {
				if b.ATR < 0 || b.ATRPercent < 0 {
					return false
				}
			}
			return true
		},
		barSliceGen(1, 100),
	))

	properties.TestingRun(t)
}

func TestSMAExpandingWindow(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	got := SMA(values, 20)
	want := []float64{1, 1.5, 2, 2.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSMAWindowCapsAtPeriod(t *testing.T) {
	values := []float64{10, 10, 10, 40}
	// Period 2: the last value averages only the trailing two.
	got := SMA(values, 2)
	if got[3] != 25 {
		t.Errorf("SMA[3] = %v, want 25", got[3])
	}
	if got[0] != 10 {
		t.Errorf("SMA[0] = %v, want 10", got[0])
	}
}

func TestEMASeededAtFirstValue(t *testing.T) {
	values := []float64{100, 110, 105}
	got := EMA(values, 12)
	if got[0] != 100 {
		t.Errorf("EMA[0] = %v, want the first input value", got[0])
	}

	multiplier := 2.0 / 13.0
	want1 := (110-100)*multiplier + 100
	if math.Abs(got[1]-want1) > 1e-9 {
		t.Errorf("EMA[1] = %v, want %v", got[1], want1)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}
	rsi := RSI(closes, 14)
	// With zero losses the epsilon guard keeps the result below 100 but
	// very close to it.
	last := rsi[len(rsi)-1]
	if last < 99 || last > 100 {
		t.Errorf("RSI of all-gain series = %v, want near 100", last)
	}
}

func TestRSIFlatSeriesNeutralAfterFill(t *testing.T) {
	bars := make([]models.PriceBar, 5)
	for i := range bars {
		bars[i] = models.PriceBar{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	enriched := Enrich(bars)
	// Zero gains and zero losses give RS = 0, so RSI lands at 0, not NaN.
	for i := 1; i < len(enriched); i++ {
		if math.IsNaN(enriched[i].RSI) {
			t.Fatalf("RSI[%d] is NaN after fill", i)
		}
	}
}

func TestSingleBarSeries(t *testing.T) {
	bars := []models.PriceBar{{Open: 580, High: 582, Low: 578, Close: 580, Volume: 1000}}
	enriched := Enrich(bars)
	if len(enriched) != 1 {
		t.Fatalf("got %d bars, want 1", len(enriched))
	}
	b := enriched[0]
	if b.SMA20 != 580 {
		t.Errorf("SMA20 = %v, want 580", b.SMA20)
	}
	// Single observation: std is undefined, fill resolves it to 0, so the
	// bands collapse onto the SMA.
	if b.BBStd != 0 || b.BBUpper != 580 || b.BBLower != 580 {
		t.Errorf("bands = (%v, %v, %v), want collapsed at 580", b.BBLower, b.SMA20, b.BBUpper)
	}
	// No delta exists for RSI; the numeric default applies.
	if b.RSI != 50 {
		t.Errorf("RSI = %v, want neutral default 50", b.RSI)
	}
	if b.ATR != 4 {
		t.Errorf("ATR = %v, want high-low = 4", b.ATR)
	}
}

func TestFillSeriesPriority(t *testing.T) {
	nan := math.NaN()

	t.Run("backward fill wins over forward fill", func(t *testing.T) {
		values := []float64{nan, 5, nan, 7}
		fillSeries(values, 0)
		want := []float64{5, 5, 7, 7}
		for i := range want {
			if values[i] != want[i] {
				t.Errorf("values[%d] = %v, want %v", i, values[i], want[i])
			}
		}
	})

	t.Run("trailing gap forward fills", func(t *testing.T) {
		values := []float64{3, nan}
		fillSeries(values, 0)
		if values[1] != 3 {
			t.Errorf("values[1] = %v, want 3", values[1])
		}
	})

	t.Run("all NaN gets the default", func(t *testing.T) {
		values := []float64{nan, nan}
		fillSeries(values, 50)
		if values[0] != 50 || values[1] != 50 {
			t.Errorf("values = %v, want all 50", values)
		}
	})
}
