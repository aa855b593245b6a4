package marketdata

import (
	"context"
	"math"
	"math/rand"
	"time"

	"condor-trader/internal/models"
	"condor-trader/internal/pricing"
)

// DemoBasePrice anchors the synthetic random walk. Roughly a broad-market
// ETF price level.
const DemoBasePrice = 580.0

// Synthetic chain shape.
const (
	demoStrikeSpacing = 5.0
	demoStrikeRange   = 0.15 // strikes span spot ± 15%
	demoBaseIV        = 0.18
	demoIVSmile       = 0.15 // IV increase per unit of |moneyness|
)

// demoExpirationDTEs are the days-to-expiration offered by the synthetic
// chain.
var demoExpirationDTEs = []int{7, 14, 30, 45}

// DemoProvider generates deterministic synthetic market data from a seed.
// It exists so the pipeline can run end to end with no external feed and
// so tests get reproducible inputs.
type DemoProvider struct {
	basePrice float64
	seed      int64
	now       func() time.Time
}

// NewDemoProvider creates a provider anchored at basePrice. The same seed
// always produces the same series and chain.
func NewDemoProvider(basePrice float64, seed int64) *DemoProvider {
	if basePrice <= 0 {
		basePrice = DemoBasePrice
	}
	return &DemoProvider{basePrice: basePrice, seed: seed, now: time.Now}
}

// PriceSeries generates a daily random walk ending today, most recent last.
func (d *DemoProvider) PriceSeries(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days < 1 {
		days = 1
	}

	rng := rand.New(rand.NewSource(d.seed))
	bars := make([]models.PriceBar, 0, days)

	price := d.basePrice
	end := d.now().Truncate(24 * time.Hour)
	for i := days - 1; i >= 0; i-- {
		// Daily log return with ~0.6% standard deviation.
		ret := rng.NormFloat64() * 0.006
		open := price
		price = price * math.Exp(ret)

		high := math.Max(open, price) * (1 + rng.Float64()*0.004)
		low := math.Min(open, price) * (1 - rng.Float64()*0.004)

		bars = append(bars, models.PriceBar{
			Timestamp: end.AddDate(0, 0, -i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    40_000_000 + rng.Int63n(30_000_000),
		})
	}
	return bars, nil
}

// OptionChain generates a synthetic chain at $5 strike spacing around the
// current spot, with model-priced quotes and a mild volatility smile.
func (d *DemoProvider) OptionChain(ctx context.Context, symbol string) (models.OptionChain, error) {
	if err := ctx.Err(); err != nil {
		return models.OptionChain{}, err
	}

	// Spot is the terminal value of the same walk the price series ends on.
	bars, err := d.PriceSeries(ctx, symbol, 30)
	if err != nil {
		return models.OptionChain{}, err
	}
	spot := bars[len(bars)-1].Close

	rng := rand.New(rand.NewSource(d.seed + 1))
	chain := models.OptionChain{
		Symbol:      symbol,
		SpotPrice:   spot,
		Expirations: make(map[string][]models.OptionQuote),
	}

	lowStrike := math.Floor(spot*(1-demoStrikeRange)/demoStrikeSpacing) * demoStrikeSpacing
	highStrike := math.Ceil(spot*(1+demoStrikeRange)/demoStrikeSpacing) * demoStrikeSpacing

	for _, dte := range demoExpirationDTEs {
		expiration := d.now().AddDate(0, 0, dte).Format("2006-01-02")
		var quotes []models.OptionQuote
		for strike := lowStrike; strike <= highStrike; strike += demoStrikeSpacing {
			for _, side := range []models.OptionSide{models.Call, models.Put} {
				iv := demoBaseIV + demoIVSmile*math.Abs(strike-spot)/spot
				mid := pricing.Price(spot, strike, float64(dte), iv, side)
				spread := math.Max(0.02, mid*0.02)

				quotes = append(quotes, models.OptionQuote{
					Strike:       strike,
					Side:         side,
					Expiration:   expiration,
					Bid:          math.Max(mid-spread/2, 0.01),
					Ask:          mid + spread/2,
					Last:         mid,
					Volume:       rng.Int63n(5000),
					OpenInterest: rng.Int63n(20000),
					IV:           iv,
					Greeks:       pricing.Greeks(spot, strike, float64(dte), iv, side),
				})
			}
		}
		chain.Expirations[expiration] = quotes
	}
	return chain, nil
}
