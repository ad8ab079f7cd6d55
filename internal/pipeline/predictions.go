package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/smailliwhtes/Investment-Project-sub000/internal/contracts"
)

// Prediction is one row of an external model-scoring file
type Prediction struct {
	Signal  null.Float
	ModelID null.String
}

// LoadPredictions reads a CSV with columns symbol, ml_signal, ml_model_id.
// Blank cells stay null. A missing file is a run-level error.
func LoadPredictions(path string) (map[string]Prediction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ml predictions %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Prediction{}, nil
		}
		return nil, fmt.Errorf("ml predictions %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["symbol"]; !ok {
		return nil, fmt.Errorf("ml predictions %s: symbol column missing", path)
	}

	out := make(map[string]Prediction)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ml predictions %s: %w", path, err)
		}
		line, _ := reader.FieldPos(0)

		symbol := strings.ToUpper(strings.TrimSpace(cell(record, cols, "symbol")))
		if symbol == "" {
			continue
		}

		var p Prediction
		if raw := strings.TrimSpace(cell(record, cols, "ml_signal")); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("ml predictions %s:%d: ml_signal %q is not a number", path, line, raw)
			}
			p.Signal = null.FloatFrom(v)
		}
		if raw := strings.TrimSpace(cell(record, cols, "ml_model_id")); raw != "" {
			p.ModelID = null.StringFrom(raw)
		}
		out[symbol] = p
	}
	return out, nil
}

// mergePredictions fills the ML columns of scored rows in place
func mergePredictions(rows []contracts.ScoreRow, predictions map[string]Prediction) int {
	merged := 0
	for i := range rows {
		if p, ok := predictions[rows[i].Symbol]; ok {
			rows[i].MLSignal = p.Signal
			rows[i].MLModelID = p.ModelID
			merged++
		}
	}
	return merged
}

func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
