package http

import (
	"encoding/json"
	"net/http"
	"time"

	"medicost/insurance"
	"medicost/model"
	"medicost/monitoring"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// API holds the handlers' dependencies: the prediction core plus the
// monitoring surfaces.
type API struct {
	svc      *insurance.PredictionService
	registry *model.Registry
	hub      *monitoring.Hub
	rate     float64
	log      *zap.Logger
}

// NewAPI wires the handlers. hub may be nil to disable the live feed.
func NewAPI(svc *insurance.PredictionService, registry *model.Registry, hub *monitoring.Hub, rate float64, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{svc: svc, registry: registry, hub: hub, rate: rate, log: log}
}

// Register mounts all routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/model", a.handleModelInfo)
	mux.Handle("GET /metrics", promhttp.Handler())
	if a.hub != nil {
		mux.HandleFunc("GET /api/recent", a.handleRecent)
		mux.HandleFunc("GET /api/ws/live", a.hub.ServeWS)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// predictResponse wraps the core result with locale-formatted display
// strings for the UI.
type predictResponse struct {
	insurance.PredictionResult
	DisplayBase      string `json:"display_base"`
	DisplayConverted string `json:"display_converted"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable"`
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var profile insurance.Profile
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid request body: " + err.Error(),
		})
		return
	}

	start := time.Now()
	result, err := a.svc.Predict(profile, a.rate)
	elapsed := time.Since(start)

	if err != nil {
		a.writePredictionError(w, err)
		return
	}

	monitoring.PredictionsTotal.Inc()
	monitoring.PredictionDuration.Observe(elapsed.Seconds())
	monitoring.ModelLoaded.Set(1)
	if a.hub != nil {
		a.hub.Publish(monitoring.PredictionEvent{
			ID:              RequestIDFromContext(r.Context()),
			AmountBase:      result.AmountBase,
			AmountConverted: result.AmountConverted,
			ConversionRate:  result.ConversionRate,
			ElapsedMS:       float64(elapsed.Microseconds()) / 1000.0,
			Timestamp:       time.Now().UTC(),
		})
	}

	writeJSON(w, http.StatusOK, predictResponse{
		PredictionResult: result,
		DisplayBase:      insurance.FormatUSD(result.AmountBase),
		DisplayConverted: insurance.FormatINR(result.AmountConverted),
	})
}

func (a *API) writePredictionError(w http.ResponseWriter, err error) {
	pe, ok := insurance.AsPredictionError(err)
	if !ok {
		a.log.Error("prediction failed with untyped error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	monitoring.PredictionFailures.WithLabelValues(string(pe.Code)).Inc()

	status := http.StatusInternalServerError
	switch pe.Code {
	case insurance.CodeInvalidProfile:
		status = http.StatusBadRequest
	case insurance.CodeArtifactNotFound, insurance.CodeArtifactCorrupt:
		status = http.StatusServiceUnavailable
		monitoring.ModelLoaded.Set(0)
	}

	writeJSON(w, status, errorResponse{
		Error:     pe.Message,
		Code:      string(pe.Code),
		Field:     pe.Field,
		Reason:    pe.Reason,
		Retryable: pe.Retryable,
	})
}

func (a *API) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"path":   a.registry.Path(),
		"loaded": a.registry.Loaded(),
	}
	if a.registry.Loaded() {
		if pipeline, err := a.registry.Get(); err == nil {
			if described, ok := pipeline.(interface{ Describe() model.Info }); ok {
				response["artifact"] = described.Describe()
			}
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"events": a.hub.Recent(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
