package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"dyad-exchange-lab/internal/domain"
)

// TradesHeader is the header row of p2p_trades.csv.
var TradesHeader = []string{
	"round", "i", "j",
	"good_a", "good_a_name", "good_b", "good_b_name",
	"q_ab", "delta_a_i", "delta_b_i", "delta_u_i", "delta_u_j",
}

// MeanHoldingsHeader is the header row of endowments_mean.csv.
var MeanHoldingsHeader = []string{"good", "name", "mean_qty"}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.10f", v)
}

// RenderTradesCSV renders the event log in execution order.
func RenderTradesCSV(events []domain.TradeEvent, goods []string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(TradesHeader); err != nil {
		return "", err
	}
	for _, ev := range events {
		row := []string{
			strconv.Itoa(ev.Round),
			strconv.Itoa(ev.I),
			strconv.Itoa(ev.J),
			strconv.Itoa(ev.GoodA),
			goodName(goods, ev.GoodA),
			strconv.Itoa(ev.GoodB),
			goodName(goods, ev.GoodB),
			formatFloat(ev.Price),
			formatFloat(ev.DeltaAI),
			formatFloat(ev.DeltaBI),
			formatFloat(ev.DeltaUI),
			formatFloat(ev.DeltaUJ),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderMeanHoldingsCSV renders one row per good.
func RenderMeanHoldingsCSV(mean []float64, goods []string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(MeanHoldingsHeader); err != nil {
		return "", err
	}
	for k, q := range mean {
		if err := w.Write([]string{strconv.Itoa(k), goodName(goods, k), formatFloat(q)}); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
