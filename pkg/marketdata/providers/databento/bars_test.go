package databento

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quotedesk/pkg/marketdata"
)

// buildBarCSV renders n hourly ohlcv rows with close = 100+i and volume =
// 10+i, oldest first.
func buildBarCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("ts_event,rtype,publisher_id,instrument_id,open,high,low,close,volume\n")
	base := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour).UnixNano()
		px := func(v float64) int64 { return int64(v * 1e9) }
		close := 100.0 + float64(i)
		fmt.Fprintf(&sb, "%d,34,1,42,%d,%d,%d,%d,%d\n",
			ts, px(close-0.5), px(close+1), px(close-1), px(close), 10+i)
	}
	return sb.String()
}

func barServer(t *testing.T, n int, gotSchema *string) *Client {
	t.Helper()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if gotSchema != nil {
			*gotSchema = r.URL.Query().Get("schema")
		}
		w.Write([]byte(buildBarCSV(n)))
	})
	return client
}

func TestGetBarsNativeTimeframe(t *testing.T) {
	var schema string
	client := barServer(t, 6, &schema)

	bars, err := client.GetBars(context.Background(), "ES", "1h", 4)
	require.NoError(t, err)
	require.Equal(t, "ohlcv-1h", schema)
	require.Len(t, bars, 4)

	// Most recent last, already venue-ordered.
	require.InDelta(t, 105.0, bars[3].Close, 1e-9)
	require.InDelta(t, 102.0, bars[0].Close, 1e-9)
	require.EqualValues(t, 15, bars[3].Volume)
	require.True(t, bars[0].Timestamp.Before(bars[3].Timestamp))
}

func TestGetBarsFourHourAggregation(t *testing.T) {
	var schema string
	client := barServer(t, 8, &schema)

	bars, err := client.GetBars(context.Background(), "NQ", "H4", 2)
	require.NoError(t, err)
	// No native 4h schema upstream; 1h is fetched and aggregated.
	require.Equal(t, "ohlcv-1h", schema)
	require.Len(t, bars, 2)

	// First group: closes 100..103, volumes 10..13.
	require.InDelta(t, 99.5, bars[0].Open, 1e-9)   // first bar's open
	require.InDelta(t, 104.0, bars[0].High, 1e-9)  // max high = 103+1
	require.InDelta(t, 99.0, bars[0].Low, 1e-9)    // min low = 100-1
	require.InDelta(t, 103.0, bars[0].Close, 1e-9) // last bar's close
	require.EqualValues(t, 10+11+12+13, bars[0].Volume)

	// Second group: closes 104..107, volumes 14..17.
	require.InDelta(t, 107.0, bars[1].Close, 1e-9)
	require.EqualValues(t, 14+15+16+17, bars[1].Volume)
}

func TestGetBarsAggregationTrailingPartialGroup(t *testing.T) {
	client := barServer(t, 10, nil)

	bars, err := client.GetBars(context.Background(), "ES", "4h", 100)
	require.NoError(t, err)
	// ceil(10/4) groups; the trailing pair still aggregates.
	require.Len(t, bars, 3)
	require.EqualValues(t, 18+19, bars[2].Volume)
	require.InDelta(t, 109.0, bars[2].Close, 1e-9)
}

func TestGetBarsReturnsAllWhenFewerThanCount(t *testing.T) {
	client := barServer(t, 3, nil)

	bars, err := client.GetBars(context.Background(), "ES", "1h", 50)
	require.NoError(t, err)
	require.Len(t, bars, 3)
}

func TestGetBarsTimeframeAliases(t *testing.T) {
	for _, tf := range []string{"4h", "H4", "h4"} {
		client := barServer(t, 8, nil)
		bars, err := client.GetBars(context.Background(), "ES", tf, 2)
		require.NoError(t, err, "timeframe %q", tf)
		require.Len(t, bars, 2, "timeframe %q", tf)
	}
}

func TestGetBarsUnsupportedTimeframe(t *testing.T) {
	client := barServer(t, 4, nil)
	_, err := client.GetBars(context.Background(), "ES", "7m", 2)
	require.ErrorContains(t, err, "unsupported timeframe")
}

func TestGetBarsNoData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ts_event,open,high,low,close,volume\n"))
	})

	_, err := client.GetBars(context.Background(), "ES", "1h", 5)
	require.ErrorIs(t, err, ErrNoData)
	require.ErrorContains(t, err, "ES")
}

func TestGetBarsInvalidCount(t *testing.T) {
	client := barServer(t, 4, nil)
	_, err := client.GetBars(context.Background(), "ES", "1h", 0)
	require.Error(t, err)
}

func TestAggregateBars(t *testing.T) {
	mk := func(close float64, volume uint64) marketdata.Bar {
		return marketdata.Bar{Open: close - 1, High: close + 2, Low: close - 2, Close: close, Volume: volume}
	}

	for _, tt := range []struct {
		n    int
		want int
	}{
		{1, 1}, {3, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3}, {12, 3},
	} {
		bars := make([]marketdata.Bar, tt.n)
		for i := range bars {
			bars[i] = mk(float64(i), 1)
		}
		got := aggregateBars(bars, 4)
		require.Len(t, got, tt.want, "n=%d", tt.n)
	}

	// Empty input passes through untouched.
	require.Empty(t, aggregateBars(nil, 4))
}
