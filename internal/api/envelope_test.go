package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEnvelope(t *testing.T, v any) map[string]any {
	t.Helper()
	result, err := EnvelopeTransformer(nil, "200", v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	out := marshalEnvelope(t, map[string]string{"name": "Her"})

	assert.Equal(t, map[string]any{
		"v":       float64(EnvelopeVersion),
		"success": true,
		"data":    map[string]any{"name": "Her"},
	}, out)
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	out := marshalEnvelope(t, nil)

	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	out := marshalEnvelope(t, &APIError{
		Code:    "NOT_FOUND",
		Message: "movie not found",
		Details: map[string]string{"name": "Jaws"},
	})

	assert.Equal(t, map[string]any{
		"v":       float64(EnvelopeVersion),
		"success": false,
		"error":   "movie not found",
		"code":    "NOT_FOUND",
		"message": "movie not found",
		"details": map[string]any{"name": "Jaws"},
	}, out)
}
