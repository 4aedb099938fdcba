package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

// SchemaVersion is the artifact format this build understands.
const SchemaVersion = 1

// ScalerStats holds the standardization parameters for one numeric column.
type ScalerStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// LinearPipeline is the serialized form of the trained pipeline: a standard
// scaler over the numeric columns, a one-hot encoder over the categorical
// columns, and a linear model on top. One-hot coefficient keys use the
// "column=value" form; a missing key is a dropped reference level.
type LinearPipeline struct {
	SchemaVersion int                    `json:"schema_version"`
	Numeric       map[string]ScalerStats `json:"numeric"`
	Categorical   map[string][]string    `json:"categorical"`
	Intercept     float64                `json:"intercept"`
	Coefficients  map[string]float64     `json:"coefficients"`
}

// DecodeArtifact parses and sanity-checks serialized pipeline bytes.
func DecodeArtifact(payload []byte) (*LinearPipeline, error) {
	var p LinearPipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	if p.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", p.SchemaVersion)
	}
	if len(p.Numeric) == 0 && len(p.Categorical) == 0 {
		return nil, errors.New("artifact declares no columns")
	}
	if len(p.Coefficients) == 0 {
		return nil, errors.New("artifact declares no coefficients")
	}
	for column, values := range p.Categorical {
		if len(values) == 0 {
			return nil, fmt.Errorf("categorical column %s has no categories", column)
		}
	}
	return &p, nil
}

// LoadArtifact reads and decodes one artifact file.
func LoadArtifact(path string) (*LinearPipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeArtifact(payload)
}

// Infer maps one keyed row to a predicted charge. Every declared column must
// be present; categorical values the encoder never saw during training are
// rejected rather than silently encoded as zeros. Columns are accumulated in
// sorted order so identical rows always produce bit-identical results.
func (p *LinearPipeline) Infer(row Row) (float64, error) {
	sum := p.Intercept

	for _, column := range sortedColumns(p.Numeric) {
		stats := p.Numeric[column]
		raw, ok := row[column]
		if !ok {
			return 0, fmt.Errorf("missing feature %q", column)
		}
		value, err := asFloat(raw)
		if err != nil {
			return 0, fmt.Errorf("feature %q: %w", column, err)
		}
		scaled := value - stats.Mean
		if stats.Std > 0 {
			scaled /= stats.Std
		}
		sum += p.Coefficients[column] * scaled
	}

	for _, column := range sortedColumns(p.Categorical) {
		categories := p.Categorical[column]
		raw, ok := row[column]
		if !ok {
			return 0, fmt.Errorf("missing feature %q", column)
		}
		value, ok := raw.(string)
		if !ok {
			return 0, fmt.Errorf("feature %q: expected string, got %T", column, raw)
		}
		if !contains(categories, value) {
			return 0, fmt.Errorf("encoder rejected unknown category %q for %q", value, column)
		}
		sum += p.Coefficients[column+"="+value]
	}

	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, errors.New("non-finite model output")
	}
	return sum, nil
}

// Describe reports the artifact's column layout for diagnostics.
func (p *LinearPipeline) Describe() Info {
	return Info{
		SchemaVersion:      p.SchemaVersion,
		NumericColumns:     sortedColumns(p.Numeric),
		CategoricalColumns: sortedColumns(p.Categorical),
	}
}

func sortedColumns[V any](columns map[string]V) []string {
	names := make([]string, 0, len(columns))
	for column := range columns {
		names = append(names, column)
	}
	sort.Strings(names)
	return names
}

func asFloat(v any) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
