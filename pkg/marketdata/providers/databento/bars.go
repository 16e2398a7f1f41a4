package databento

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"quotedesk/pkg/marketdata"
)

// barLookbackPadDays absorbs weekends and holidays inside the lookback
// window so a full count of bars is usually available.
const barLookbackPadDays = 7

// hourlyBarsPerFourHour is the group size when synthesizing 4h bars from the
// native 1h schema.
const hourlyBarsPerFourHour = 4

// GetBars fetches up to count OHLCV bars for the given timeframe, ordered
// oldest to newest. The 4h timeframe is synthesized by aggregating 1h bars,
// since the upstream has no native 4-hour schema.
func (c *Client) GetBars(ctx context.Context, symbol, timeframe string, count int) ([]marketdata.Bar, error) {
	interval, err := normalizeInterval(timeframe)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("databento: bar count must be positive")
	}
	contract, ok := ContinuousContract(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}

	schema, ok := nativeSchemas[interval]
	aggregate := !ok
	if aggregate {
		// 4h: request 1h bars and combine afterwards.
		schema = nativeSchemas["1h"]
	}

	end := c.now().UTC()
	start := end.Add(-intervalDurations[interval] * time.Duration(count)).AddDate(0, 0, -barLookbackPadDays)

	query := url.Values{
		"dataset":  {c.dataset},
		"symbols":  {contract},
		"schema":   {schema},
		"stype_in": {"continuous"},
		"start":    {start.Format(time.RFC3339)},
		"end":      {end.Format(time.RFC3339)},
		"encoding": {"csv"},
	}
	body, err := c.get(ctx, "/timeseries.get_range", query)
	if err != nil {
		return nil, fmt.Errorf("databento: bars %s %s: %w", symbol, timeframe, err)
	}

	records := DecodeCSV(string(body))
	if len(records) == 0 {
		return nil, fmt.Errorf("%w for %s %s", ErrNoData, symbol, timeframe)
	}

	bars := make([]marketdata.Bar, 0, len(records))
	for _, record := range records {
		bar, err := decodeBar(record)
		if err != nil {
			return nil, fmt.Errorf("databento: bars %s %s: %w", symbol, timeframe, err)
		}
		bars = append(bars, bar)
	}

	if aggregate {
		bars = aggregateBars(bars, hourlyBarsPerFourHour)
	}
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	return bars, nil
}

// decodeBar maps one ohlcv CSV record onto a Bar, fixed-point-decoding the
// four price fields and keeping volume as-is.
func decodeBar(record map[string]string) (marketdata.Bar, error) {
	eventNanos, err := nanosField(record, "ts_event")
	if err != nil {
		return marketdata.Bar{}, err
	}
	var bar marketdata.Bar
	bar.Timestamp = time.Unix(0, eventNanos).UTC()
	for name, dst := range map[string]*float64{
		"open":  &bar.Open,
		"high":  &bar.High,
		"low":   &bar.Low,
		"close": &bar.Close,
	} {
		v, err := priceField(record, name)
		if err != nil {
			return marketdata.Bar{}, err
		}
		*dst = v
	}
	volume, err := volumeField(record, "volume")
	if err != nil {
		return marketdata.Bar{}, err
	}
	bar.Volume = volume
	return bar, nil
}

// aggregateBars partitions an ordered bar sequence into consecutive groups of
// groupSize, in arrival order rather than aligned to calendar boundaries, and
// combines each group into one bar. A trailing group with fewer members is
// still aggregated from whatever it has.
func aggregateBars(bars []marketdata.Bar, groupSize int) []marketdata.Bar {
	if groupSize <= 1 || len(bars) == 0 {
		return bars
	}
	out := make([]marketdata.Bar, 0, (len(bars)+groupSize-1)/groupSize)
	for start := 0; start < len(bars); start += groupSize {
		end := start + groupSize
		if end > len(bars) {
			end = len(bars)
		}
		group := bars[start:end]
		combined := marketdata.Bar{
			Timestamp: group[0].Timestamp,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
		}
		for _, bar := range group {
			if bar.High > combined.High {
				combined.High = bar.High
			}
			if bar.Low < combined.Low {
				combined.Low = bar.Low
			}
			combined.Volume += bar.Volume
		}
		out = append(out, combined)
	}
	return out
}
