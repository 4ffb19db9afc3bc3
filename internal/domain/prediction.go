package domain

import (
	"time"

	"github.com/google/uuid"
)

// PredictionLog is one append-only audit record produced by the scheduled
// prediction job. Records are the only persisted output of the service;
// everything else is computed per request and discarded.
type PredictionLog struct {
	ID           string    `json:"id"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Rainfall24h  float64   `json:"rainfall24h"`
	SoilMoisture float64   `json:"soilMoisture"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// NewPredictionLog builds a log record from a location and its evidence,
// stamped with the package clock so tests can freeze generation time.
func NewPredictionLog(coord Coordinate, evidence RiskEvidence) PredictionLog {
	return PredictionLog{
		ID:           uuid.NewString(),
		Lat:          coord.Lat,
		Lon:          coord.Lon,
		RiskLevel:    evidence.Risk,
		Rainfall24h:  evidence.Rainfall24h,
		SoilMoisture: evidence.SoilMoisture,
		GeneratedAt:  clock.Now().UTC(),
	}
}
