// Command genartifact writes a well-formed sample pipeline artifact so the
// service can run without the real training output. The parameters are fixed
// constants resembling a fit on the classic insurance dataset; no training
// happens here.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"medicost/model"
)

func main() {
	out := flag.String("out", "data/medical_cost_stack.json", "artifact output path")
	flag.Parse()

	artifact := model.LinearPipeline{
		SchemaVersion: model.SchemaVersion,
		Numeric: map[string]model.ScalerStats{
			"age":      {Mean: 39.2, Std: 14.05},
			"bmi":      {Mean: 30.66, Std: 6.10},
			"children": {Mean: 1.09, Std: 1.21},
		},
		Categorical: map[string][]string{
			"sex":    {"female", "male"},
			"smoker": {"no", "yes"},
			"region": {"northeast", "northwest", "southeast", "southwest"},
		},
		Intercept: 13270.42,
		Coefficients: map[string]float64{
			"age":              3616.0,
			"bmi":              2056.0,
			"children":         574.0,
			"sex=male":         -130.0,
			"smoker=yes":       23848.0,
			"region=northwest": -353.0,
			"region=southeast": -1035.0,
			"region=southwest": -960.0,
		},
	}

	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		log.Fatalf("encode artifact: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		log.Fatalf("write artifact: %v", err)
	}
	log.Printf("sample artifact written to %s", *out)
}
