// Package marketdata defines the data source boundary of the analysis
// pipeline. A Provider fetches raw price series and option chains; the Feed
// wraps a provider with a synthetic fallback and a Greek backfill so that
// downstream consumers always receive complete data, never an error.
package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"condor-trader/internal/models"
	"condor-trader/internal/pricing"
)

// DefaultIV is the implied volatility assumed when a quote carries none.
const DefaultIV = 0.20

// Provider fetches market data for one symbol. Implementations may be
// remote and slow; both methods honor the context.
type Provider interface {
	PriceSeries(ctx context.Context, symbol string, days int) ([]models.PriceBar, error)
	OptionChain(ctx context.Context, symbol string) (models.OptionChain, error)
}

// Feed decorates a Provider with two guarantees: provider failures fall
// back to synthetic data instead of propagating, and every quote in a
// returned chain has a populated Greek tuple.
type Feed struct {
	provider  Provider
	fallback  *DemoProvider
	defaultIV float64
	log       zerolog.Logger
	now       func() time.Time
}

// FeedOptions tunes the synthetic fallback. Zero values take package
// defaults.
type FeedOptions struct {
	BasePrice float64 // anchor for the synthetic walk
	DefaultIV float64 // IV assumed when a quote carries none
	Seed      int64   // 0 seeds from the clock
}

// NewFeed wraps the provider with default options. A nil provider means
// synthetic-only mode.
func NewFeed(provider Provider, log zerolog.Logger) *Feed {
	return NewFeedWithOptions(provider, FeedOptions{}, log)
}

// NewFeedWithOptions wraps the provider with a tuned synthetic fallback.
func NewFeedWithOptions(provider Provider, opts FeedOptions, log zerolog.Logger) *Feed {
	if opts.BasePrice <= 0 {
		opts.BasePrice = DemoBasePrice
	}
	if opts.DefaultIV <= 0 {
		opts.DefaultIV = DefaultIV
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Feed{
		provider:  provider,
		fallback:  NewDemoProvider(opts.BasePrice, opts.Seed),
		defaultIV: opts.DefaultIV,
		log:       log,
		now:       time.Now,
	}
}

// PriceSeries returns daily bars for the symbol, most recent last. On any
// provider failure a synthetic series is substituted and the failure is
// logged, so the result is never empty for days >= 1.
func (f *Feed) PriceSeries(ctx context.Context, symbol string, days int) []models.PriceBar {
	if f.provider != nil {
		bars, err := f.provider.PriceSeries(ctx, symbol, days)
		if err == nil && len(bars) > 0 {
			return bars
		}
		if err != nil {
			f.log.Warn().Err(err).Str("symbol", symbol).Msg("Price series unavailable, using synthetic data")
		}
	}
	bars, _ := f.fallback.PriceSeries(ctx, symbol, days)
	return bars
}

// OptionChain returns the chain for the symbol with every quote's Greeks
// populated. Provider failures substitute a synthetic chain.
func (f *Feed) OptionChain(ctx context.Context, symbol string) models.OptionChain {
	var chain models.OptionChain
	var err error
	if f.provider != nil {
		chain, err = f.provider.OptionChain(ctx, symbol)
	}
	if f.provider == nil || err != nil || len(chain.Expirations) == 0 {
		if err != nil {
			f.log.Warn().Err(err).Str("symbol", symbol).Msg("Option chain unavailable, using synthetic data")
		}
		chain, _ = f.fallback.OptionChain(ctx, symbol)
	}
	f.backfillGreeks(&chain)
	return chain
}

// backfillGreeks computes Greeks for every quote that has none, using the
// quote's own IV when present and the feed's default otherwise.
func (f *Feed) backfillGreeks(chain *models.OptionChain) {
	for exp, quotes := range chain.Expirations {
		days := f.daysToExpiration(exp)
		for i := range quotes {
			q := &quotes[i]
			if q.Greeks != (models.Greeks{}) {
				continue
			}
			iv := q.IV
			if iv <= 0 {
				iv = f.defaultIV
			}
			q.Greeks = pricing.Greeks(chain.SpotPrice, q.Strike, days, iv, q.Side)
		}
	}
}

// daysToExpiration converts an ISO date to calendar days from now. An
// unparseable date counts as expired.
func (f *Feed) daysToExpiration(expiration string) float64 {
	t, err := time.Parse("2006-01-02", expiration)
	if err != nil {
		f.log.Warn().Str("expiration", expiration).Msg("Unparseable expiration date")
		return 0
	}
	return t.Sub(f.now()).Hours() / 24
}
