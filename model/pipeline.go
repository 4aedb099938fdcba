package model

// Row is a single keyed feature record. Keys must match, byte for byte, the
// column names the artifact was fit on; preprocessing inside the pipeline is
// keyed by name, not position.
type Row map[string]any

// Pipeline is the contract every loaded artifact satisfies: preprocessing and
// regression bundled together, mapping one row to one predicted annual charge
// in the base currency.
type Pipeline interface {
	Infer(row Row) (float64, error)
}

// Info describes a loaded artifact for diagnostics.
type Info struct {
	SchemaVersion      int      `json:"schema_version"`
	NumericColumns     []string `json:"numeric_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
}
