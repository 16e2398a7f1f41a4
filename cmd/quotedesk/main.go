package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"quotedesk/internal/cli"
	"quotedesk/pkg/marketdata"
	// Importing the provider package registers it with the config registry.
	"quotedesk/pkg/marketdata/providers/databento"
)

const callTimeout = 60 * time.Second

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	switch os.Args[1] {
	case "quote":
		requireArgs(3, "quote <symbol>")
		quote, err := defaultProvider().Quote(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("quote %s: %v", os.Args[2], err)
		}
		fmt.Printf("%s  bid=%.4f ask=%.4f mid=%.4f  event=%s age=%s\n",
			quote.Symbol, quote.Bid, quote.Ask, quote.Price,
			quote.Timestamp.Format(time.RFC3339), quote.DataAge().Round(time.Second))

	case "bars":
		requireArgs(5, "bars <symbol> <timeframe> <count>")
		count, err := strconv.Atoi(os.Args[4])
		if err != nil {
			log.Fatalf("bars: invalid count %q: %v", os.Args[4], err)
		}
		bars, err := defaultProvider().HistoricalBars(ctx, os.Args[2], os.Args[3], count)
		if err != nil {
			log.Fatalf("bars %s %s: %v", os.Args[2], os.Args[3], err)
		}
		for _, bar := range bars {
			fmt.Printf("%s  o=%.4f h=%.4f l=%.4f c=%.4f v=%d\n",
				bar.Timestamp.Format(time.RFC3339), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}

	case "session":
		ts := time.Now()
		if len(os.Args) > 2 {
			parsed, err := time.Parse(time.RFC3339, os.Args[2])
			if err != nil {
				log.Fatalf("session: invalid timestamp %q: %v", os.Args[2], err)
			}
			ts = parsed
		}
		info := marketdata.SessionAt(ts)
		fmt.Printf("%s  session=%s start=%s end=%s\n",
			info.Timestamp.Format(time.RFC3339), info.Session,
			info.SessionStart.Format(time.RFC3339), info.SessionEnd.Format(time.RFC3339))

	case "datasets":
		provider, ok := defaultProvider().(*databento.Provider)
		if !ok {
			log.Fatalf("datasets: default provider does not expose the databento API")
		}
		datasets, err := provider.Client().ListDatasets(ctx)
		if err != nil {
			log.Fatalf("datasets: %v", err)
		}
		for _, dataset := range datasets {
			fmt.Println(dataset)
		}

	default:
		usage()
		os.Exit(2)
	}
}

func defaultProvider() marketdata.Provider {
	cfg := marketdata.MustLoad()
	cli.LogConfigSummary(cfg)
	providers, err := cfg.BuildProviders()
	if err != nil {
		log.Fatalf("build providers: %v", err)
	}
	name := cfg.Default
	if name == "" {
		for candidate := range providers {
			name = candidate
			break
		}
	}
	provider, ok := providers[name]
	if !ok {
		log.Fatalf("no provider configured")
	}
	return provider
}

func requireArgs(n int, form string) {
	if len(os.Args) < n {
		log.Fatalf("usage: quotedesk %s", form)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: quotedesk <command>

commands:
  quote <symbol>                    current bid/ask midpoint, e.g. quote ES
  bars <symbol> <timeframe> <count> historical OHLCV bars, e.g. bars NQ H4 24
  session [timestamp]               trading session for a UTC timestamp
  datasets                          datasets visible to the configured API key`)
}
