package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// Column headers. Order is part of the output contract.
var (
	eligibleHeader = []string{"symbol", "eligible", "gate_fail_reasons", "theme_bucket", "asset_type"}

	scoredHeader = []string{
		"symbol", "monitor_score", "risk_flags", "explanation", "theme_bucket", "asset_type",
		"last_date", "lag_days", "rank", "risk_level", "ml_signal", "ml_model_id",
	}

	featuresHeader = []string{
		"symbol", "as_of_date", "history_days", "last_date", "lag_days", "staleness_days_at_run", "close",
		"ret_1m", "ret_3m", "ret_6m", "ret_12m",
		"sma_20", "sma_50", "sma_200", "close_to_sma_20", "close_to_sma_50", "close_to_sma_200",
		"vol_20d", "vol_60d", "downside_vol_60d", "worst_5d_return_6m", "max_drawdown_6m",
		"rsi_14", "high_252d", "close_to_high_252d",
		"adv_20d", "avg_volume_20d", "zero_volume_fraction_60d",
		"volume_missing", "missing_data", "dropped_rows", "split_suspect", "split_suspect_date",
		"stale_data", "load_error",
	}
)

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// eligibleRows lists every universe member in symbol order
func (f formatter) eligibleRows(symbols []contracts.SymbolResult) [][]string {
	rows := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, []string{
			s.Member.Symbol,
			f.boolean(s.Gate.Eligible),
			s.Gate.ReasonString(),
			s.Member.ThemeBucket,
			s.Member.AssetTypeLabel(),
		})
	}
	return rows
}

// scoredRows lists eligible symbols in rank order
func (f formatter) scoredRows(scored []contracts.ScoreRow) [][]string {
	rows := make([][]string, 0, len(scored))
	for _, r := range scored {
		rows = append(rows, []string{
			r.Symbol,
			strconv.Itoa(r.MonitorScore),
			contracts.JoinFlags(r.RiskFlags),
			r.Explanation,
			r.ThemeBucket,
			string(r.AssetType),
			f.date(r.LastDate),
			f.integer(r.LagDays),
			strconv.Itoa(r.Rank),
			string(r.RiskLevel),
			f.float(r.MLSignal),
			f.str(r.MLModelID),
		})
	}
	return rows
}

func (f formatter) featureRows(symbols []contracts.SymbolResult) [][]string {
	rows := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		r := s.Features
		rows = append(rows, []string{
			s.Member.Symbol,
			f.day(r.AsOfDate),
			strconv.Itoa(r.HistoryDays),
			f.date(r.LastDate),
			f.integer(r.LagDays),
			f.integer(r.StalenessDaysAtRun),
			f.float(r.Close),
			f.float(r.Return1M),
			f.float(r.Return3M),
			f.float(r.Return6M),
			f.float(r.Return12M),
			f.float(r.SMA20),
			f.float(r.SMA50),
			f.float(r.SMA200),
			f.float(r.CloseToSMA20),
			f.float(r.CloseToSMA50),
			f.float(r.CloseToSMA200),
			f.float(r.Vol20D),
			f.float(r.Vol60D),
			f.float(r.DownsideVol60D),
			f.float(r.Worst5DReturn6M),
			f.float(r.MaxDrawdown6M),
			f.float(r.RSI14),
			f.float(r.High252D),
			f.float(r.CloseToHigh252D),
			f.float(r.ADV20D),
			f.float(r.AvgVolume20D),
			f.float(r.ZeroVolumeFraction60D),
			f.boolean(r.VolumeMissing),
			f.boolean(r.MissingData),
			strconv.Itoa(r.DroppedRows),
			f.boolean(r.SplitSuspect),
			f.date(r.SplitSuspectDate),
			f.boolean(s.Gate.Stale),
			r.LoadError,
		})
	}
	return rows
}
