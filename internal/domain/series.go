package domain

import (
	"github.com/couchcryptid/flood-risk-service/internal/apperr"
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HourlySeries holds the parallel hourly arrays for one location as returned
// by the forecast provider. Time defines the ordering; every present array
// has the same length as Time. A nil entry is a missing sample, not a zero.
// Rain is mandatory; the remaining arrays are optional.
type HourlySeries struct {
	Time          []string   `json:"time"`
	Precipitation []*float64 `json:"precipitation,omitempty"`
	Rain          []*float64 `json:"rain"`
	SoilMoisture  []*float64 `json:"soil_moisture_0_to_1cm,omitempty"`
	Humidity      []*float64 `json:"relative_humidity_2m,omitempty"`
}

// Validate checks the invariants downstream code relies on: the rain array is
// present and every present array matches the length of the time axis.
func (s HourlySeries) Validate() error {
	if s.Rain == nil {
		return apperr.New(apperr.CodeMalformedSeries, "hourly series is missing the rain field")
	}
	n := len(s.Time)
	for name, arr := range map[string][]*float64{
		"precipitation":          s.Precipitation,
		"rain":                   s.Rain,
		"soil_moisture_0_to_1cm": s.SoilMoisture,
		"relative_humidity_2m":   s.Humidity,
	} {
		if arr != nil && len(arr) != n {
			return apperr.Newf(apperr.CodeMalformedSeries,
				"hourly field %s has %d entries, time axis has %d", name, len(arr), n)
		}
	}
	return nil
}

// NullPolicy controls how missing samples are treated when aggregating.
type NullPolicy string

const (
	// NullSkip excludes missing samples: sums ignore them and averages
	// divide by the count of present samples.
	NullSkip NullPolicy = "skip"

	// NullZero counts missing samples as zero: averages divide by the
	// full slice length. Sums are identical under both policies.
	NullZero NullPolicy = "zero"
)

// ParseNullPolicy validates a policy string from configuration.
func ParseNullPolicy(s string) (NullPolicy, error) {
	switch NullPolicy(s) {
	case NullSkip, NullZero:
		return NullPolicy(s), nil
	default:
		return "", apperr.Newf(apperr.CodeInvalidArgument, "null policy must be %q or %q, got %q", NullSkip, NullZero, s)
	}
}

// sumValues adds the present samples of a slice. Missing samples contribute
// nothing, which is the same result under either null policy.
func sumValues(values []*float64) float64 {
	var sum float64
	for _, v := range values {
		if v != nil {
			sum += *v
		}
	}
	return sum
}

// meanValues averages a slice under the given null policy. A slice with no
// present samples averages to 0, never NaN.
func meanValues(values []*float64, policy NullPolicy) float64 {
	var sum float64
	present := 0
	for _, v := range values {
		if v != nil {
			sum += *v
			present++
		}
	}

	denom := present
	if policy == NullZero {
		denom = len(values)
	}
	if denom == 0 {
		return 0
	}
	return sum / float64(denom)
}
