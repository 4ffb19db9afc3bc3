package domain

import (
	"math"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
)

// RiskLevel is the ordinal flood-risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Classification thresholds. Rainfall is a millimeter sum over the evaluation
// window; saturation is a 0–1 fraction. The medium rule is checked first and
// the high rule overrides it, so a value past both lands on high.
const (
	mediumRainfallMM = 40.0
	highRainfallMM   = 70.0
	mediumSaturation = 0.60
	highSaturation   = 0.75
)

// riskMessages are the fixed human-readable strings per level.
var riskMessages = map[RiskLevel]string{
	RiskLow:    "No significant flood risk.",
	RiskMedium: "Moderate flood risk due to rainfall and soil saturation.",
	RiskHigh:   "High flood risk. Heavy rainfall and saturated conditions detected.",
}

// RiskEvidence is the classification result for one location and window:
// the level plus the numeric evidence it was derived from.
type RiskEvidence struct {
	Risk         RiskLevel `json:"risk"`
	Rainfall24h  float64   `json:"rainfall24h"`
	SoilMoisture float64   `json:"soilMoisture"`
	Message      string    `json:"message"`
}

// Classify maps an hourly series to a risk level with supporting evidence.
// It sums rain over the trailing windowHours entries (all entries when the
// series is shorter) and estimates soil saturation from the soil-moisture
// array, falling back to relative humidity divided by 100 when soil moisture
// is absent, and to 0 when neither is present.
//
// Classify is pure: identical input always yields identical evidence. It
// fails only when the mandatory rain array is absent.
func Classify(series HourlySeries, windowHours int, policy NullPolicy) (RiskEvidence, error) {
	if series.Rain == nil {
		return RiskEvidence{}, apperr.New(apperr.CodeMalformedSeries, "hourly series is missing the rain field")
	}

	rainfall := sumValues(lastHours(series.Rain, windowHours))
	saturation := saturationEstimate(series, policy)
	level := classifyThresholds(rainfall, saturation)

	return RiskEvidence{
		Risk:         level,
		Rainfall24h:  round1(rainfall),
		SoilMoisture: round2(saturation),
		Message:      riskMessages[level],
	}, nil
}

// classifyThresholds applies the threshold rules to raw (unrounded) evidence.
func classifyThresholds(rainfall, saturation float64) RiskLevel {
	level := RiskLow
	if rainfall > mediumRainfallMM || saturation > mediumSaturation {
		level = RiskMedium
	}
	if rainfall > highRainfallMM || saturation > highSaturation {
		level = RiskHigh
	}
	return level
}

// saturationEstimate prefers direct soil moisture (already 0–1) and falls
// back to 2m relative humidity as a proxy, converted from percent.
func saturationEstimate(series HourlySeries, policy NullPolicy) float64 {
	switch {
	case series.SoilMoisture != nil:
		return meanValues(series.SoilMoisture, policy)
	case series.Humidity != nil:
		return meanValues(series.Humidity, policy) / 100
	default:
		return 0
	}
}

// lastHours returns the trailing n entries, or the whole slice when it is
// shorter. No zero padding.
func lastHours(values []*float64, n int) []*float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
