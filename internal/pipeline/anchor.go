package pipeline

import (
	"fmt"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
	"github.com/smailliwhtes/Investment-Project-sub000/internal/strategyconfig"
)

// ResolveAnchor decides the as-of date of a run.
// explicit: the configured date. frontier: the latest last bar across
// every loaded series. The wall clock is never consulted.
func ResolveAnchor(anchor strategyconfig.Anchor, series []*contracts.Series) (time.Time, error) {
	switch anchor.Policy {
	case strategyconfig.AnchorExplicit:
		if anchor.AsOf == "" {
			return time.Time{}, fmt.Errorf("anchor.as_of: required for explicit policy")
		}
		d, err := contracts.ParseDate(anchor.AsOf)
		if err != nil {
			return time.Time{}, fmt.Errorf("anchor.as_of: %q is not YYYY-MM-DD", anchor.AsOf)
		}
		return d, nil

	case strategyconfig.AnchorFrontier, "":
		frontier, ok := DataFrontier(series)
		if !ok {
			return time.Time{}, fmt.Errorf("anchor.policy frontier: no series loaded, pass --as-of")
		}
		return frontier, nil

	default:
		return time.Time{}, fmt.Errorf("anchor.policy: unknown policy %q", anchor.Policy)
	}
}

// DataFrontier returns the latest bar date across series
func DataFrontier(series []*contracts.Series) (time.Time, bool) {
	var frontier time.Time
	found := false
	for _, s := range series {
		if s == nil {
			continue
		}
		if last, ok := s.LastDate(); ok && (!found || last.After(frontier)) {
			frontier = last
			found = true
		}
	}
	return frontier, found
}
