package insurance

import (
	"errors"
	"math"

	"medicost/model"

	"go.uber.org/zap"
)

// PipelineSource yields the shared, read-only pipeline. Satisfied by
// *model.Registry; tests substitute fakes.
type PipelineSource interface {
	Get() (model.Pipeline, error)
}

// PredictionResult is the per-request output. Constructed per call, never
// persisted.
type PredictionResult struct {
	AmountBase      float64 `json:"amount_base"`
	AmountConverted float64 `json:"amount_converted"`
	ConversionRate  float64 `json:"conversion_rate"`
}

// PredictionService turns one validated profile into one result. It holds no
// mutable state, only the shared pipeline source, so concurrent Predict
// calls need no mutual exclusion.
type PredictionService struct {
	source PipelineSource
	log    *zap.Logger
}

// NewPredictionService wires the service to its pipeline source.
func NewPredictionService(source PipelineSource, log *zap.Logger) *PredictionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictionService{source: source, log: log}
}

// Predict runs the single linear pass: validate, shape, infer, convert. A
// failure at any stage aborts the call with exactly one PredictionError;
// nothing is retried here.
func (s *PredictionService) Predict(profile Profile, rate float64) (PredictionResult, error) {
	if err := profile.Validate(); err != nil {
		return PredictionResult{}, err
	}

	row := profile.FeatureRow()

	pipeline, err := s.source.Get()
	if err != nil {
		return PredictionResult{}, FromRegistryError(err)
	}

	amountBase, err := pipeline.Infer(row)
	if err != nil {
		s.log.Warn("pipeline rejected a validated row", zap.Error(err))
		return PredictionResult{}, NewInferenceError(err)
	}
	if math.IsNaN(amountBase) || math.IsInf(amountBase, 0) || amountBase < 0 {
		// A negative insurance charge is never a valid answer.
		s.log.Warn("pipeline produced an out-of-range charge",
			zap.Float64("amount_base", amountBase))
		return PredictionResult{}, NewInferenceError(errOutOfRange)
	}

	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return PredictionResult{}, NewConfigurationError(
			"conversion rate must be strictly positive")
	}

	return PredictionResult{
		AmountBase:      amountBase,
		AmountConverted: amountBase * rate,
		ConversionRate:  rate,
	}, nil
}

var errOutOfRange = errors.New("out-of-range result")
