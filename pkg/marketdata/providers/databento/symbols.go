package databento

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDataset is the CME Globex MDP 3.0 dataset served by Databento.
const DefaultDataset = "GLBX.MDP3"

// continuousContracts maps logical futures symbols to the venue's rolling
// front-month continuous notation. The table is static; unmapped symbols are
// rejected before any request is issued.
var continuousContracts = map[string]string{
	"ES":  "ES.c.0",  // E-mini S&P 500
	"NQ":  "NQ.c.0",  // E-mini Nasdaq-100
	"YM":  "YM.c.0",  // E-mini Dow
	"RTY": "RTY.c.0", // E-mini Russell 2000
	"CL":  "CL.c.0",  // Crude Oil
	"GC":  "GC.c.0",  // Gold
	"SI":  "SI.c.0",  // Silver
	"NG":  "NG.c.0",  // Natural Gas
	"ZB":  "ZB.c.0",  // 30-Year T-Bond
	"ZN":  "ZN.c.0",  // 10-Year T-Note
	"6E":  "6E.c.0",  // Euro FX
	"6J":  "6J.c.0",  // Japanese Yen
}

// ContinuousContract resolves a logical symbol such as "ES" to its continuous
// contract notation "ES.c.0".
func ContinuousContract(symbol string) (string, bool) {
	contract, ok := continuousContracts[strings.ToUpper(strings.TrimSpace(symbol))]
	return contract, ok
}

// Symbols returns the logical symbols the engine can resolve.
func Symbols() []string {
	out := make([]string, 0, len(continuousContracts))
	for symbol := range continuousContracts {
		out = append(out, symbol)
	}
	return out
}

// intervalDurations covers the timeframes the bar pipeline accepts. 4h has no
// native upstream schema and is synthesized from 1h bars.
var intervalDurations = map[string]time.Duration{
	"1m": time.Minute,
	"1h": time.Hour,
	"4h": 4 * time.Hour,
	"1d": 24 * time.Hour,
}

// nativeSchemas maps intervals to upstream OHLCV schema identifiers.
var nativeSchemas = map[string]string{
	"1m": "ohlcv-1m",
	"1h": "ohlcv-1h",
	"1d": "ohlcv-1d",
}

var intervalAliases = map[string]string{
	"m1": "1m",
	"h1": "1h",
	"h4": "4h",
	"d1": "1d",
}

// normalizeInterval canonicalises a timeframe name, accepting both "4h" and
// "H4" spellings case-insensitively.
func normalizeInterval(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := intervalAliases[key]; ok {
		key = alias
	}
	if _, ok := intervalDurations[key]; !ok {
		return "", fmt.Errorf("databento: unsupported timeframe %q", name)
	}
	return key, nil
}
