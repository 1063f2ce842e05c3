package contest

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{87.456, 87.46},
		{87.454, 87.45},
		{0.1 + 0.2, 0.3},
		{999.994, 999.99},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundScore(tt.in), "RoundScore(%v)", tt.in)
	}
}

func TestEveryHundredthIsStable(t *testing.T) {
	for cents := 0; cents <= 99999; cents++ {
		v := float64(cents) / 100
		require.Equal(t, v, RoundScore(v), "cents %d", cents)

		text := strconv.FormatFloat(v, 'f', -1, 64)
		back, err := strconv.ParseFloat(text, 64)
		require.NoError(t, err)
		require.Equal(t, v, back, "cents %d", cents)
		require.Equal(t, cents, int(RoundScore(v)*100+0.5), "cents %d", cents)
	}

	raw, err := json.Marshal(Result{Score: RoundScore(87.456)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"score":87.46`)
}
