package model

import (
	"math"
	"strings"
	"testing"
)

func testPipeline() *LinearPipeline {
	return &LinearPipeline{
		SchemaVersion: SchemaVersion,
		Numeric: map[string]ScalerStats{
			"x": {Mean: 0, Std: 1},
		},
		Categorical: map[string][]string{
			"c": {"a", "b"},
		},
		Intercept: 1,
		Coefficients: map[string]float64{
			"x":   2,
			"c=b": 5,
		},
	}
}

func TestInferLinearCombination(t *testing.T) {
	p := testPipeline()

	got, err := p.Infer(Row{"x": 3.0, "c": "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}

	// Reference level carries no coefficient.
	got, err = p.Infer(Row{"x": 3.0, "c": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestInferScalesNumerics(t *testing.T) {
	p := testPipeline()
	p.Numeric["x"] = ScalerStats{Mean: 10, Std: 2}

	got, err := p.Infer(Row{"x": 14, "c": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (14-10)/2 * 2 + 1
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestInferIsDeterministic(t *testing.T) {
	// Coefficients with catastrophic cancellation: any change in summation
	// order changes the float64 result, so repeated calls must accumulate
	// the columns in a fixed order.
	p := &LinearPipeline{
		SchemaVersion: SchemaVersion,
		Numeric: map[string]ScalerStats{
			"a": {Mean: 0, Std: 1},
			"b": {Mean: 0, Std: 1},
			"c": {Mean: 0, Std: 1},
		},
		Coefficients: map[string]float64{
			"a": 1e16,
			"b": 1,
			"c": -1e16,
		},
	}
	row := Row{"a": 1.0, "b": 1.0, "c": 1.0}

	first, err := p.Infer(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := p.Infer(row)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if got != first {
			t.Fatalf("iteration %d: Infer returned %v, first call returned %v", i, got, first)
		}
	}
}

func TestInferRejectsUnknownCategory(t *testing.T) {
	p := testPipeline()
	_, err := p.Infer(Row{"x": 1.0, "c": "z"})
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	if !strings.Contains(err.Error(), "unknown category") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInferRejectsMissingFeature(t *testing.T) {
	p := testPipeline()
	if _, err := p.Infer(Row{"c": "a"}); err == nil {
		t.Fatal("expected error for missing numeric feature")
	}
	if _, err := p.Infer(Row{"x": 1.0}); err == nil {
		t.Fatal("expected error for missing categorical feature")
	}
}

func TestInferRejectsNonFinite(t *testing.T) {
	p := testPipeline()
	if _, err := p.Infer(Row{"x": math.Inf(1), "c": "a"}); err == nil {
		t.Fatal("expected error for non-finite result")
	}
}

func TestDecodeArtifactValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"wrong schema", `{"schema_version":99,"numeric":{"x":{"mean":0,"std":1}},"coefficients":{"x":1}}`},
		{"no columns", `{"schema_version":1,"coefficients":{"x":1}}`},
		{"no coefficients", `{"schema_version":1,"numeric":{"x":{"mean":0,"std":1}}}`},
		{"empty categories", `{"schema_version":1,"categorical":{"c":[]},"coefficients":{"x":1}}`},
	}
	for _, tc := range cases {
		if _, err := DecodeArtifact([]byte(tc.payload)); err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
	}
}
