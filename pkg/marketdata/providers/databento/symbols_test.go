package databento

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContinuousContract(t *testing.T) {
	for symbol, want := range map[string]string{
		"ES":   "ES.c.0",
		"es":   "ES.c.0",
		" NQ ": "NQ.c.0",
		"GC":   "GC.c.0",
	} {
		got, ok := ContinuousContract(symbol)
		require.True(t, ok, "symbol %q", symbol)
		require.Equal(t, want, got)
	}

	_, ok := ContinuousContract("BTC")
	require.False(t, ok)
	_, ok = ContinuousContract("")
	require.False(t, ok)
}

func TestSymbolsListsEveryMapping(t *testing.T) {
	symbols := Symbols()
	require.Len(t, symbols, len(continuousContracts))
	for _, symbol := range symbols {
		_, ok := ContinuousContract(symbol)
		require.True(t, ok)
	}
}

func TestNormalizeInterval(t *testing.T) {
	for input, want := range map[string]string{
		"1m": "1m",
		"M1": "1m",
		"1h": "1h",
		"H1": "1h",
		"4h": "4h",
		"H4": "4h",
		"h4": "4h",
		"1d": "1d",
		"D1": "1d",
	} {
		got, err := normalizeInterval(input)
		require.NoError(t, err, "input %q", input)
		require.Equal(t, want, got, "input %q", input)
	}

	_, err := normalizeInterval("7m")
	require.Error(t, err)
	_, err = normalizeInterval("")
	require.Error(t, err)
}
