package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

type currentResponse struct {
	Lat          float64          `json:"lat"`
	Lon          float64          `json:"lon"`
	Risk         domain.RiskLevel `json:"risk"`
	Rainfall24h  float64          `json:"rainfall24h"`
	SoilMoisture float64          `json:"soilMoisture"`
	Message      string           `json:"message"`
}

type forecastResponse struct {
	Forecast []domain.ForecastDay `json:"forecast"`
}

type areaResponse struct {
	Areas []domain.GridCell `json:"areas"`
}

type errorBody struct {
	Code      apperr.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func handleCurrent(risk RiskAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lon, err := coordParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		evidence, err := risk.CurrentRisk(r.Context(), lat, lon)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, currentResponse{
			Lat:          lat,
			Lon:          lon,
			Risk:         evidence.Risk,
			Rainfall24h:  evidence.Rainfall24h,
			SoilMoisture: evidence.SoilMoisture,
			Message:      evidence.Message,
		})
	}
}

func handleForecast(risk RiskAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lon, err := coordParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		days, err := risk.ForecastRisk(r.Context(), lat, lon)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, forecastResponse{Forecast: days})
	}
}

func handleArea(risk RiskAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lon, err := coordParams(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cells, err := risk.AreaRisk(r.Context(), lat, lon)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, areaResponse{Areas: cells})
	}
}

// coordParams parses the lat and lon query parameters. A missing or
// non-numeric value is rejected here, before any upstream call.
func coordParams(r *http.Request) (float64, float64, error) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, apperr.New(apperr.CodeInvalidArgument, "lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, apperr.Newf(apperr.CodeInvalidArgument, "lat %q is not a number", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, apperr.Newf(apperr.CodeInvalidArgument, "lon %q is not a number", lonStr)
	}
	return lat, lon, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), errorResponse{Error: errorBody{
		Code:      code,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
