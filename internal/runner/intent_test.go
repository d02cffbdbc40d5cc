package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		action string
		want   Intent
	}{
		{"BUY", Intent{Long, OpOpen}},
		{"buy", Intent{Long, OpOpen}},
		{"  Open_Long ", Intent{Long, OpOpen}},
		{"LONG_AGAIN", Intent{Long, OpIncrease}},
		{"SELL", Intent{Short, OpOpen}},
		{"SHORT_AGAIN", Intent{Short, OpIncrease}},
		{"close_half_long", Intent{Long, OpClosePartial}},
		{"CLOSE_LONG", Intent{Long, OpCloseFull}},
		{"CLOSE_SHORT_HALF", Intent{Short, OpClosePartial}},
		{"CLOSE_SHORT", Intent{Short, OpCloseFull}},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, err := Classify(tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyIsTotalOverKnownActions(t *testing.T) {
	for _, a := range KnownActions() {
		first, err := Classify(a)
		require.NoError(t, err, a)
		second, err := Classify(a)
		require.NoError(t, err, a)
		assert.Equal(t, first, second, a)
		assert.NotZero(t, first.Direction, a)
		assert.NotZero(t, first.Operation, a)
	}
}

func TestClassifyUnknown(t *testing.T) {
	for _, a := range []string{"", "HOLD", "BUYY", "close", "CLOSE_ALL", "SHORT AGAIN"} {
		_, err := Classify(a)
		assert.ErrorIs(t, err, ErrUnknownSignal, "%q", a)
	}
}

func TestIntentFraction(t *testing.T) {
	assert.Equal(t, "0.5", Intent{Long, OpClosePartial}.Fraction().String())
	assert.Equal(t, "1", Intent{Long, OpCloseFull}.Fraction().String())
}
