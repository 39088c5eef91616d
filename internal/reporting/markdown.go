package reporting

import (
	"fmt"
	"strings"
	"time"
)

// maxPairRows caps the pair table; the full counts live in the trades CSV.
const maxPairRows = 20

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Summary
	goods := r.Config.Goods

	// Header
	sb.WriteString("# Dyadic Exchange Run\n\n")
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}
	if r.ConfigHash != "" {
		sb.WriteString(fmt.Sprintf("Config hash: `%s`\n\n", r.ConfigHash))
	}
	if !r.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339)))
	}

	// Configuration
	sb.WriteString("## Configuration\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Seed | %d |\n", r.Config.Seed))
	sb.WriteString(fmt.Sprintf("| Agents | %d |\n", r.Config.NumAgents))
	sb.WriteString(fmt.Sprintf("| Rounds | %d |\n", r.Config.Rounds))
	sb.WriteString(fmt.Sprintf("| Encounters per round | %d |\n", r.Config.P2PEncountersPerRound))
	sb.WriteString(fmt.Sprintf("| Goods | %d |\n", len(goods)))
	sb.WriteString(fmt.Sprintf("| Base good | %s |\n", goodName(goods, r.Config.BaseGood)))
	sb.WriteString(fmt.Sprintf("| Pairing mode | %s |\n", r.Config.PairingMode))
	sb.WriteString(fmt.Sprintf("| Step cap | %.4f |\n", r.Config.StepCap()))
	sb.WriteString("\n")

	if s == nil {
		sb.WriteString("No summary available.\n")
		return sb.String()
	}

	// Activity
	sb.WriteString("## Activity\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Encounters | %d |\n", s.Encounters))
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", s.TotalTrades))
	if s.Encounters > 0 {
		sb.WriteString(fmt.Sprintf("| Trade rate | %.4f |\n", float64(s.TotalTrades)/float64(s.Encounters)))
	}
	sb.WriteString(fmt.Sprintf("| Utility gain (i) | %.6f |\n", s.UtilityGainI))
	sb.WriteString(fmt.Sprintf("| Utility gain (j) | %.6f |\n", s.UtilityGainJ))
	sb.WriteString("\n")

	// Prices
	sb.WriteString("## Prices\n\n")
	if s.TotalTrades > 0 {
		sb.WriteString("| Mean | Median | P10 | P90 |\n")
		sb.WriteString("|------|--------|-----|-----|\n")
		sb.WriteString(fmt.Sprintf("| %.6f | %.6f | %.6f | %.6f |\n",
			s.PriceMean, s.PriceMedian, s.PriceP10, s.PriceP90))
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	// Trades per round
	sb.WriteString("## Trades per Round\n\n")
	if len(s.TradesPerRound) > 0 {
		sb.WriteString("| Round | Trades |\n")
		sb.WriteString("|-------|--------|\n")
		for round, n := range s.TradesPerRound {
			sb.WriteString(fmt.Sprintf("| %d | %d |\n", round, n))
		}
	} else {
		sb.WriteString("No rounds run.\n")
	}
	sb.WriteString("\n")

	// Pairs
	sb.WriteString("## Most Traded Pairs\n\n")
	if len(s.PairCounts) > 0 {
		sb.WriteString("| Good A | Good B | Trades |\n")
		sb.WriteString("|--------|--------|--------|\n")
		for i, p := range s.PairCounts {
			if i == maxPairRows {
				break
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n",
				goodName(goods, p.GoodA), goodName(goods, p.GoodB), p.Count))
		}
	} else {
		sb.WriteString("No pairs traded.\n")
	}
	sb.WriteString("\n")

	// Holdings
	sb.WriteString("## Mean Final Holdings\n\n")
	if len(s.MeanHoldings) > 0 {
		sb.WriteString("| Good | Mean |\n")
		sb.WriteString("|------|------|\n")
		for k, q := range s.MeanHoldings {
			sb.WriteString(fmt.Sprintf("| %s | %.6f |\n", goodName(goods, k), q))
		}
	} else {
		sb.WriteString("No agents.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
