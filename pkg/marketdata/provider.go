package marketdata

import (
	"context"
	"time"
)

// Provider exposes venue-agnostic market data lookups.
type Provider interface {
	// Quote returns the current top-of-book quote for a logical symbol.
	Quote(ctx context.Context, symbol string) (*Quote, error)
	// HistoricalBars returns up to count OHLCV bars for the given timeframe,
	// ordered oldest to newest.
	HistoricalBars(ctx context.Context, symbol, timeframe string, count int) ([]Bar, error)
}

// Quote captures the current bid/ask view for a symbol. Quotes are immutable
// once constructed; a refresh produces a new value.
type Quote struct {
	Symbol    string    // Logical symbol, e.g. "ES"
	Price     float64   // Midpoint of Bid and Ask
	Bid       float64   // Best bid price
	Ask       float64   // Best ask price
	Timestamp time.Time // Event time reported by the venue, not fetch time
}

// DataAge reports how stale the quote is relative to the wall clock. It is
// derived at read time rather than stored.
func (q *Quote) DataAge() time.Duration {
	return time.Since(q.Timestamp)
}

// Bar is one fixed time bucket of trading activity for one instrument.
type Bar struct {
	Timestamp time.Time // Bucket open time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    uint64
}
