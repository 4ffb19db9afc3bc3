package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 7, 15, 6, 30, 0, 0, time.UTC)
	record := domain.PredictionLog{
		ID:           "pred-1",
		Lat:          31.5,
		Lon:          74.3,
		RiskLevel:    domain.RiskHigh,
		Rainfall24h:  81.2,
		SoilMoisture: 0.77,
		GeneratedAt:  now,
	}

	msg, err := serializeToMessage(record)
	require.NoError(t, err)

	assert.Equal(t, []byte("pred-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"risk_level":"high"`)
	assert.Contains(t, string(msg.Value), `"rainfall24h":81.2`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "risk_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("high"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
