package databento

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"quotedesk/pkg/marketdata"
)

// quoteCacheTTL bounds how long a fetched quote may be served without a new
// upstream call.
const quoteCacheTTL = 30 * time.Second

// Provider wraps Databento client calls behind the generic
// marketdata.Provider contract and adds the short-lived quote cache. The
// cache map is owned by the instance, so separate providers (e.g. in tests)
// never share state.
type Provider struct {
	client     *Client
	timeout    time.Duration
	clock      func() time.Time
	providerID string

	cacheMu sync.RWMutex
	quotes  map[string]cachedQuote
}

type cachedQuote struct {
	quote   *marketdata.Quote
	fetched time.Time
}

type providerConfig struct {
	timeout       time.Duration
	clock         func() time.Time
	clientOptions []Option
}

// ProviderOption customises the Databento provider.
type ProviderOption func(*providerConfig)

// WithTimeout caps the duration of one provider call including retries.
// Zero means no cap beyond the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithProviderClock overrides the cache time source (primarily for testing).
func WithProviderClock(clock func() time.Time) ProviderOption {
	return func(cfg *providerConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithClientOptions passes options to the underlying client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a Databento market data provider.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	cfg := &providerConfig{clock: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := NewClient(apiKey, cfg.clientOptions...)
	if err != nil {
		return nil, err
	}
	return &Provider{
		client:  client,
		timeout: cfg.timeout,
		clock:   cfg.clock,
		quotes:  make(map[string]cachedQuote),
	}, nil
}

func init() {
	marketdata.RegisterProvider("databento", func(name string, cfg *marketdata.ProviderConfig) (marketdata.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout() > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout()))
		}
		if cfg.HTTPTimeout() > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Dataset != "" {
			clientOptions = append(clientOptions, WithDataset(cfg.Dataset))
		}
		if cfg.MaxAttempts > 0 {
			clientOptions = append(clientOptions, WithMaxAttempts(cfg.MaxAttempts))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		provider, err := NewProvider(cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		provider.providerID = name
		return provider, nil
	})
}

// Quote implements marketdata.Provider. A cached entry younger than
// quoteCacheTTL is returned without touching the network; otherwise the
// upstream is fetched and the entry replaced. Two concurrent misses both
// fetch and the last writer wins; both results are equally valid quotes.
func (p *Provider) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if quote, ok := p.loadQuote(symbol); ok {
		return quote, nil
	}

	quote, err := p.client.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Debugf("databento: quote refreshed provider=%s symbol=%s price=%.4f", p.providerName(), symbol, quote.Price)
	p.storeQuote(symbol, quote)
	return quote, nil
}

// HistoricalBars implements marketdata.Provider. Bars are not cached; the
// lookback math already pads for quiet days.
func (p *Provider) HistoricalBars(ctx context.Context, symbol, timeframe string, count int) ([]marketdata.Bar, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.GetBars(ctx, symbol, timeframe, count)
}

// Client exposes the underlying API client for the auxiliary endpoints
// (metadata, symbology, batch jobs, corporate actions).
func (p *Provider) Client() *Client {
	return p.client
}

func (p *Provider) loadQuote(symbol string) (*marketdata.Quote, bool) {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	entry, ok := p.quotes[cacheKey(symbol)]
	if !ok || entry.quote == nil || p.clock().Sub(entry.fetched) >= quoteCacheTTL {
		return nil, false
	}
	copied := *entry.quote
	return &copied, true
}

func (p *Provider) storeQuote(symbol string, quote *marketdata.Quote) {
	if quote == nil {
		return
	}
	copied := *quote
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	if p.quotes == nil {
		p.quotes = make(map[string]cachedQuote)
	}
	p.quotes[cacheKey(symbol)] = cachedQuote{quote: &copied, fetched: p.clock()}
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Provider) providerName() string {
	if strings.TrimSpace(p.providerID) != "" {
		return p.providerID
	}
	return "databento"
}
