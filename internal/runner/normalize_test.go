package runner

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_trader/internal/models"
)

func rule(step, min string) models.LotRule {
	return models.LotRule{Step: d(step), MinQty: d(min)}
}

func TestNormalizeQty(t *testing.T) {
	tests := []struct {
		raw, step, min string
		want           string
	}{
		{"10", "0.01", "0.01", "10"},
		{"10.009", "0.01", "0.01", "10"},
		{"0.3", "0.1", "0.1", "0.3"},
		{"1.0", "0.001", "0.001", "1"},
		{"7.77", "0.5", "0.5", "7.5"},
		{"123.456789", "0.0001", "0.0001", "123.4567"},
		{"3", "1", "1", "3"},
	}
	for _, tt := range tests {
		got, err := NormalizeQty(d(tt.raw), rule(tt.step, tt.min))
		require.NoError(t, err, tt.raw)
		assert.True(t, got.Equal(d(tt.want)), "raw %s step %s: got %s want %s", tt.raw, tt.step, got, tt.want)
	}
}

func TestNormalizeQtyBelowMinimum(t *testing.T) {
	_, err := NormalizeQty(d("0.009"), rule("0.01", "0.01"))
	assert.ErrorIs(t, err, ErrBelowMinimumLot)

	_, err = NormalizeQty(d("0.05"), rule("0.01", "0.1"))
	assert.ErrorIs(t, err, ErrBelowMinimumLot)

	// minQty 0 не пропускает нулевой ордер
	_, err = NormalizeQty(d("0.004"), rule("0.01", "0"))
	assert.ErrorIs(t, err, ErrBelowMinimumLot)
}

func TestNormalizeQtyInvalidStep(t *testing.T) {
	_, err := NormalizeQty(d("1"), models.LotRule{Step: decimal.Zero})
	var oe *OracleError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, OracleLotRule, oe.Oracle)
}

func TestNormalizeQtyNeverExceedsRawAndIsStepMultiple(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	steps := []string{"0.001", "0.01", "0.1", "1", "0.05", "0.0025"}

	for i := 0; i < 2000; i++ {
		step := d(steps[r.Intn(len(steps))])
		raw := decimal.New(r.Int63n(10_000_000), -int32(r.Intn(7)))

		qty, err := NormalizeQty(raw, models.LotRule{Step: step, MinQty: decimal.Zero})
		if err != nil {
			assert.ErrorIs(t, err, ErrBelowMinimumLot)
			assert.True(t, raw.LessThan(step), "raw %s step %s", raw, step)
			continue
		}
		assert.True(t, qty.LessThanOrEqual(raw), "qty %s > raw %s", qty, raw)
		assert.True(t, qty.Mod(step).IsZero(), "qty %s not a multiple of %s", qty, step)
		assert.True(t, raw.Sub(qty).LessThan(step), "qty %s too far below raw %s", qty, raw)
	}
}
