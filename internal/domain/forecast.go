package domain

import (
	"strings"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
)

const hoursPerDay = 24

// ForecastDay is the aggregated risk for one whole calendar day.
type ForecastDay struct {
	Day          string    `json:"day"`
	Rainfall     float64   `json:"rainfall"`
	SoilMoisture float64   `json:"soilMoisture"`
	Risk         RiskLevel `json:"risk"`
}

// BuildForecast buckets an hourly series into whole 24-hour days and
// classifies each bucket with the same thresholds as Classify. The series is
// assumed to start at hour 0 of day 0 in the provider's local timezone. A
// partial final day is dropped, never aggregated short, so at most
// min(horizonDays, len(rain)/24) days are returned.
func BuildForecast(series HourlySeries, horizonDays int, policy NullPolicy) ([]ForecastDay, error) {
	if series.Rain == nil {
		return nil, apperr.New(apperr.CodeMalformedSeries, "hourly series is missing the rain field")
	}

	days := len(series.Rain) / hoursPerDay
	if horizonDays < days {
		days = horizonDays
	}

	forecast := make([]ForecastDay, 0, days)
	for d := 0; d < days; d++ {
		lo, hi := d*hoursPerDay, (d+1)*hoursPerDay

		rainfall := sumValues(series.Rain[lo:hi])

		var saturation float64
		switch {
		case series.SoilMoisture != nil:
			saturation = meanValues(daySlice(series.SoilMoisture, lo, hi), policy)
		case series.Humidity != nil:
			saturation = meanValues(daySlice(series.Humidity, lo, hi), policy) / 100
		}

		forecast = append(forecast, ForecastDay{
			Day:          dayLabel(series.Time, lo),
			Rainfall:     round1(rainfall),
			SoilMoisture: round2(saturation),
			Risk:         classifyThresholds(rainfall, saturation),
		})
	}

	return forecast, nil
}

// daySlice slices [lo, hi) clamped to the array length, so a saturation array
// shorter than the rain array never panics.
func daySlice(values []*float64, lo, hi int) []*float64 {
	if lo >= len(values) {
		return nil
	}
	if hi > len(values) {
		hi = len(values)
	}
	return values[lo:hi]
}

// dayLabel is the calendar date of the slice's first timestamp, taken from
// the ISO-8601 hourly label (everything before the 'T').
func dayLabel(times []string, idx int) string {
	if idx >= len(times) {
		return ""
	}
	day, _, _ := strings.Cut(times[idx], "T")
	return day
}
