// Package reporting renders a finished run into its output files.
package reporting

import (
	"time"

	"dyad-exchange-lab/internal/domain"
	"dyad-exchange-lab/internal/metrics"
)

// Report bundles everything rendered for one run.
type Report struct {
	// Metadata
	RunID       string
	ConfigHash  string
	GeneratedAt time.Time

	Config  domain.SimConfig
	Summary *metrics.Summary
	Events  []domain.TradeEvent
}

// goodName returns goods[k], or a positional name when the roster is short.
func goodName(goods []string, k int) string {
	cfg := domain.SimConfig{Goods: goods}
	return cfg.GoodName(k)
}
