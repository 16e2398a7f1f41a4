package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"quotedesk/pkg/marketdata"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// market data config.
func ConfigSummaryLines(cfg *marketdata.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Default provider: %s", valueOr(cfg.Default, "<first configured>")),
	}

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := cfg.Providers[name]
		lines = append(lines, fmt.Sprintf("Provider %s: type=%s dataset=%s credential=%s",
			name, pc.Type, valueOr(pc.Dataset, "<provider default>"), presence(strings.TrimSpace(pc.APIKey) != "")))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *marketdata.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
