package s4_scoring

import (
	"sort"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Ranker orders scored rows: monitor_score desc, then symbol asc
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	if log == nil {
		log = logger.Nop()
	}
	return &Ranker{logger: log.WithStage(contracts.StageScoring.ShortName())}
}

// Rank returns a sorted copy with 1-based ranks assigned
func (r *Ranker) Rank(rows []contracts.ScoreRow) []contracts.ScoreRow {
	ranked := make([]contracts.ScoreRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MonitorScore != b.MonitorScore {
			return a.MonitorScore > b.MonitorScore
		}
		return a.Symbol < b.Symbol
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"total":     len(ranked),
			"top_score": ranked[0].MonitorScore,
			"top":       ranked[0].Symbol,
		}).Info("Ranking completed")
	}

	return ranked
}

// TopN returns the first n ranked rows
func TopN(ranked []contracts.ScoreRow, n int) []contracts.ScoreRow {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
