package models

// OptionSide distinguishes calls from puts.
type OptionSide string

const (
	Call OptionSide = "call"
	Put  OptionSide = "put"
)

// Greeks holds the option sensitivities.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// OptionQuote is an immutable snapshot of one contract in the chain.
// Regenerated on each data refresh, never mutated in place.
type OptionQuote struct {
	Strike       float64
	Side         OptionSide
	Expiration   string // ISO 8601 YYYY-MM-DD
	Bid          float64
	Ask          float64
	Last         float64
	Volume       int64
	OpenInterest int64
	IV           float64
	Greeks       Greeks
}

// OptionChain maps expiration date (YYYY-MM-DD) to the quotes for that
// expiration, both sides, all strikes, unordered.
type OptionChain struct {
	Symbol      string
	SpotPrice   float64
	Expirations map[string][]OptionQuote
}

// IronCondorCandidate is a derived 4-leg setup: short OTM call spread plus
// short OTM put spread. Long legs are further out-of-the-money than the
// short legs, which is what bounds the risk.
type IronCondorCandidate struct {
	ShortCall OptionQuote
	LongCall  OptionQuote
	ShortPut  OptionQuote
	LongPut   OptionQuote

	Expiration string

	// Dollar amounts per single condor (contract multiplier applied).
	Credit          float64
	MaxProfit       float64
	MaxLoss         float64
	BreakevenUpper  float64
	BreakevenLower  float64
	ProbabilityOfProfit float64 // percent, clamped to [0,100]

	// Set when the selection netted a debit and max profit was clamped to
	// zero. A degenerate setup signals bad quote data, not a trade.
	DataQualityWarning bool
}
