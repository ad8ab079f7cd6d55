package s1_universe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/s0_data"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Builder resolves a watchlist against the OHLCV directory
type Builder struct {
	dataDir string
	config  strategyconfig.Universe
	logger  *logger.Logger
}

// NewBuilder creates a new Universe Builder
func NewBuilder(dataDir string, config strategyconfig.Universe, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		dataDir: dataDir,
		config:  config,
		logger:  log.WithStage(contracts.StageUniverse.ShortName()),
	}
}

// Build constructs the universe from a watchlist.
// Members without an OHLCV file stay in the universe (S3 marks them
// MISSING_OHLC) and are also listed in Missing.
// ⭐ SSOT: S1 → S2 유니버스 생성
func (b *Builder) Build(ctx context.Context, wl *Watchlist) (*contracts.Universe, error) {
	if wl == nil {
		return nil, fmt.Errorf("build universe: nil watchlist")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index, err := s0_data.IndexDir(b.dataDir)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}

	universe := &contracts.Universe{
		Members:    make([]contracts.Member, 0, len(wl.Rows)),
		Missing:    make([]string, 0),
		Excluded:   make(map[string]string),
		TotalCount: len(wl.Rows),
	}

	for _, row := range wl.Rows {
		member := contracts.Member{
			Symbol:        row.Symbol,
			Name:          row.Name,
			ThemeBucket:   row.ThemeBucket,
			AssetType:     row.AssetType,
			RawAssetType:  row.RawAssetType,
			Line:          row.Line,
			InvalidReason: row.Invalid,
		}

		if reason := b.checkExclusion(member); reason != "" {
			universe.Excluded[member.Symbol] = reason
			continue
		}

		if path, ok := index.Lookup(member.Symbol); ok {
			member.FilePath = path
		} else {
			universe.Missing = append(universe.Missing, member.Symbol)
		}
		universe.Members = append(universe.Members, member)
	}

	sort.Slice(universe.Members, func(i, j int) bool {
		return universe.Members[i].Symbol < universe.Members[j].Symbol
	})
	sort.Strings(universe.Missing)

	b.logger.WithFields(map[string]interface{}{
		"watchlist": universe.TotalCount,
		"members":   len(universe.Members),
		"missing":   len(universe.Missing),
		"excluded":  len(universe.Excluded),
		"indexed":   index.Len(),
	}).Info("universe built")

	return universe, nil
}

// checkExclusion returns the exclusion reason, "" when the member stays.
// Invalid rows are never excluded here: the gate reports them.
func (b *Builder) checkExclusion(m contracts.Member) string {
	if len(b.config.IncludeAssetTypes) == 0 || !m.Valid() {
		return ""
	}
	for _, t := range b.config.IncludeAssetTypes {
		if strings.EqualFold(t, string(m.AssetType)) {
			return ""
		}
	}
	return fmt.Sprintf("asset_type %s not in include_asset_types", m.AssetType)
}
