package report

import (
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// formatter renders cell values. NULL is always an empty cell.
type formatter struct {
	precision int32
}

func (f formatter) float(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(f.precision)
}

func (f formatter) fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func (f formatter) integer(v null.Int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func (f formatter) date(v null.Time) string {
	if !v.Valid {
		return ""
	}
	return v.Time.Format(contracts.DateLayout)
}

func (f formatter) day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contracts.DateLayout)
}

func (f formatter) boolean(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func (f formatter) str(v null.String) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
