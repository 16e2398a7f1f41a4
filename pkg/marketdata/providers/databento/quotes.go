package databento

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"quotedesk/pkg/marketdata"
)

// quoteLookbackDays pads the quote request window so the last traded tick is
// still in range across weekends and holidays.
const quoteLookbackDays = 7

// GetQuote fetches the most recent top-of-book quote for a logical symbol.
// The quote price is the bid/ask midpoint of the last mbp-1 row in the
// window. Callers wanting the 30-second cache should go through Provider.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	contract, ok := ContinuousContract(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}

	end := c.now().UTC()
	start := end.AddDate(0, 0, -quoteLookbackDays)

	query := url.Values{
		"dataset":  {c.dataset},
		"symbols":  {contract},
		"schema":   {"mbp-1"},
		"stype_in": {"continuous"},
		"start":    {start.Format(time.RFC3339)},
		"end":      {end.Format(time.RFC3339)},
		"encoding": {"csv"},
	}
	body, err := c.get(ctx, "/timeseries.get_range", query)
	if err != nil {
		return nil, fmt.Errorf("databento: quote %s: %w", symbol, err)
	}

	records := DecodeCSV(string(body))
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	// The venue returns rows in event order; the last one is the freshest.
	last := records[len(records)-1]
	bid, err := priceField(last, "bid_px_00")
	if err != nil {
		return nil, fmt.Errorf("databento: quote %s: %w", symbol, err)
	}
	ask, err := priceField(last, "ask_px_00")
	if err != nil {
		return nil, fmt.Errorf("databento: quote %s: %w", symbol, err)
	}
	eventNanos, err := nanosField(last, "ts_event")
	if err != nil {
		return nil, fmt.Errorf("databento: quote %s: %w", symbol, err)
	}

	return &marketdata.Quote{
		Symbol:    symbol,
		Price:     (bid + ask) / 2,
		Bid:       bid,
		Ask:       ask,
		Timestamp: time.Unix(0, eventNanos).UTC(),
	}, nil
}
