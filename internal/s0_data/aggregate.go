package s0_data

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// rawRow is one parsed file row before same-date aggregation
type rawRow struct {
	line int
	bar  contracts.Bar
}

// aggregateByDate collapses rows sharing a date, in file order:
// open=first non-null, high=max, low=min, close=last non-null,
// volume=sum (nulls as 0, null only when every row is null),
// adj_close=last non-null. Output is sorted ascending by date.
func aggregateByDate(rows []rawRow) (bars []contracts.Bar, duplicates int) {
	groups := make(map[time.Time][]contracts.Bar, len(rows))
	order := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		d := r.bar.Date
		if _, seen := groups[d]; !seen {
			order = append(order, d)
		} else {
			duplicates++
		}
		groups[d] = append(groups[d], r.bar)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	bars = make([]contracts.Bar, 0, len(order))
	for _, d := range order {
		bars = append(bars, mergeBars(d, groups[d]))
	}
	return bars, duplicates
}

func mergeBars(date time.Time, group []contracts.Bar) contracts.Bar {
	if len(group) == 1 {
		return group[0]
	}

	out := contracts.Bar{Date: date}
	var volSum int64
	volSeen := false

	for _, b := range group {
		if !out.Open.Valid && b.Open.Valid {
			out.Open = b.Open
		}
		if b.High.Valid && (!out.High.Valid || b.High.Float64 > out.High.Float64) {
			out.High = b.High
		}
		if b.Low.Valid && (!out.Low.Valid || b.Low.Float64 < out.Low.Float64) {
			out.Low = b.Low
		}
		if b.Close.Valid {
			out.Close = b.Close
		}
		if b.AdjClose.Valid {
			out.AdjClose = b.AdjClose
		}
		if b.Volume.Valid {
			volSeen = true
			volSum += b.Volume.Int64
		}
	}

	if volSeen {
		out.Volume = null.IntFrom(volSum)
	}
	return out
}
