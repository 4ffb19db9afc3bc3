package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
)

func ptr(v float64) *float64 { return &v }

// vals builds a sample slice with every entry present.
func vals(xs ...float64) []*float64 {
	out := make([]*float64, len(xs))
	for i, x := range xs {
		out[i] = ptr(x)
	}
	return out
}

// flat builds a sample slice of n entries, all set to v.
func flat(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = ptr(v)
	}
	return out
}

func TestClassify(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		series := HourlySeries{
			Rain:         flat(24, 1.7),
			SoilMoisture: flat(24, 0.42),
		}

		first, err := Classify(series, 24, NullSkip)
		require.NoError(t, err)
		second, err := Classify(series, 24, NullSkip)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("threshold boundaries", func(t *testing.T) {
		tests := []struct {
			name       string
			rainfall   float64
			saturation float64
			expected   RiskLevel
		}{
			{"rainfall exactly 40 stays low", 40.0, 0.0, RiskLow},
			{"rainfall just past 40 is medium", 40.01, 0.0, RiskMedium},
			{"rainfall just past 70 is high", 70.01, 0.0, RiskHigh},
			{"saturation exactly 0.60 stays low", 0.0, 0.60, RiskLow},
			{"saturation just past 0.60 is medium", 0.0, 0.61, RiskMedium},
			{"saturation exactly 0.75 stays medium", 0.0, 0.75, RiskMedium},
			{"saturation 0.76 with no rain is high", 0.0, 0.76, RiskHigh},
			{"both past high thresholds is high", 80.0, 0.9, RiskHigh},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, classifyThresholds(tt.rainfall, tt.saturation))
			})
		}
	})

	t.Run("short series sums all entries without padding", func(t *testing.T) {
		series := HourlySeries{Rain: flat(10, 5.0)}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, 50.0, evidence.Rainfall24h)
		assert.Equal(t, RiskMedium, evidence.Risk)
	})

	t.Run("long series sums only the trailing window", func(t *testing.T) {
		rain := flat(48, 0)
		for i := 24; i < 48; i++ {
			rain[i] = ptr(2.0)
		}
		series := HourlySeries{Rain: rain}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, 48.0, evidence.Rainfall24h)
		assert.Equal(t, RiskMedium, evidence.Risk)
	})

	t.Run("null saturation samples", func(t *testing.T) {
		t.Run("skip policy averages present samples", func(t *testing.T) {
			series := HourlySeries{
				Rain:         vals(0, 0, 0),
				SoilMoisture: []*float64{nil, nil, ptr(0.5)},
			}

			evidence, err := Classify(series, 24, NullSkip)

			require.NoError(t, err)
			assert.Equal(t, 0.5, evidence.SoilMoisture)
		})

		t.Run("all-null saturation averages to zero", func(t *testing.T) {
			series := HourlySeries{
				Rain:         vals(0, 0),
				SoilMoisture: []*float64{nil, nil},
			}

			evidence, err := Classify(series, 24, NullSkip)

			require.NoError(t, err)
			assert.Equal(t, 0.0, evidence.SoilMoisture)
		})

		t.Run("zero policy divides by slice length", func(t *testing.T) {
			series := HourlySeries{
				Rain:         vals(0, 0, 0, 0),
				SoilMoisture: []*float64{nil, nil, ptr(0.8), ptr(0.8)},
			}

			evidence, err := Classify(series, 24, NullZero)

			require.NoError(t, err)
			assert.Equal(t, 0.4, evidence.SoilMoisture)
		})
	})

	t.Run("heavy rain with no saturation fields", func(t *testing.T) {
		rain := flat(24, 0)
		rain[0] = ptr(40.0)
		rain[1] = ptr(35.0)
		series := HourlySeries{Rain: rain}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, RiskHigh, evidence.Risk)
		assert.Equal(t, 75.0, evidence.Rainfall24h)
		assert.Equal(t, 0.0, evidence.SoilMoisture)
		assert.Equal(t, "High flood risk. Heavy rainfall and saturated conditions detected.", evidence.Message)
	})

	t.Run("soil moisture preferred over humidity", func(t *testing.T) {
		series := HourlySeries{
			Rain:         vals(0, 0),
			SoilMoisture: vals(0.30, 0.30),
			Humidity:     vals(90, 90),
		}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, 0.30, evidence.SoilMoisture)
	})

	t.Run("humidity proxy scales percent to fraction", func(t *testing.T) {
		series := HourlySeries{
			Rain:     vals(0, 0),
			Humidity: vals(80, 80),
		}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, 0.80, evidence.SoilMoisture)
		assert.Equal(t, RiskHigh, evidence.Risk)
	})

	t.Run("empty but present soil array averages to zero", func(t *testing.T) {
		series := HourlySeries{
			Rain:         vals(0),
			SoilMoisture: []*float64{},
			Humidity:     vals(95),
		}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, 0.0, evidence.SoilMoisture)
		assert.Equal(t, RiskLow, evidence.Risk)
	})

	t.Run("missing rain is an error", func(t *testing.T) {
		series := HourlySeries{Humidity: vals(50)}

		_, err := Classify(series, 24, NullSkip)

		require.Error(t, err)
		assert.Equal(t, apperr.CodeMalformedSeries, apperr.CodeOf(err))
	})

	t.Run("evidence is rounded but classification is not", func(t *testing.T) {
		// 24 entries of 1.6700001 sum to 40.0800024, just over the medium
		// threshold, but the reported sum rounds to 40.1.
		series := HourlySeries{Rain: flat(24, 1.6700001)}

		evidence, err := Classify(series, 24, NullSkip)

		require.NoError(t, err)
		assert.Equal(t, RiskMedium, evidence.Risk)
		assert.Equal(t, 40.1, evidence.Rainfall24h)
	})

	t.Run("message matches final level", func(t *testing.T) {
		tests := []struct {
			level   RiskLevel
			message string
		}{
			{RiskLow, "No significant flood risk."},
			{RiskMedium, "Moderate flood risk due to rainfall and soil saturation."},
			{RiskHigh, "High flood risk. Heavy rainfall and saturated conditions detected."},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.message, riskMessages[tt.level])
		}
	})
}
