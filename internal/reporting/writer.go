package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output file names written by WriteOutputs.
const (
	TradesFile       = "p2p_trades.csv"
	MeanHoldingsFile = "endowments_mean.csv"
	ConfigFile       = "config_used.json"
	SummaryFile      = "summary.md"
)

// WriteOutputs renders r into dir, creating it if needed.
// Returns the paths written, in a fixed order.
func WriteOutputs(dir string, r *Report) ([]string, error) {
	if r == nil || r.Summary == nil {
		return nil, fmt.Errorf("write outputs: report has no summary")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	trades, err := RenderTradesCSV(r.Events, r.Config.Goods)
	if err != nil {
		return nil, fmt.Errorf("render trades: %w", err)
	}
	holdings, err := RenderMeanHoldingsCSV(r.Summary.MeanHoldings, r.Config.Goods)
	if err != nil {
		return nil, fmt.Errorf("render holdings: %w", err)
	}
	cfgJSON, err := json.MarshalIndent(r.Config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{TradesFile, []byte(trades)},
		{MeanHoldingsFile, []byte(holdings)},
		{ConfigFile, append(cfgJSON, '\n')},
		{SummaryFile, []byte(RenderMarkdown(r))},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
