package runner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_trader/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func acct(bal string) models.AccountState { return models.AccountState{AvailableBalance: d(bal)} }

func px(p string) models.PriceQuote { return models.PriceQuote{Price: d(p)} }

func TestCalcRawQtyOpen(t *testing.T) {
	s := DefaultSizing()

	raw, err := s.CalcRawQty(Intent{Long, OpOpen}, acct("1000"), pos(models.PositionNone, "0"), px("100"))
	require.NoError(t, err)
	assert.True(t, raw.Equal(d("10")), raw.String())
}

func TestCalcRawQtyOpenWithBalanceFraction(t *testing.T) {
	s := Sizing{MinNotional: d("5"), BalanceFraction: d("0.5")}

	raw, err := s.CalcRawQty(Intent{Short, OpOpen}, acct("1000"), pos(models.PositionNone, "0"), px("100"))
	require.NoError(t, err)
	assert.True(t, raw.Equal(d("5")), raw.String())
}

func TestCalcRawQtyOpenTruncatesDivision(t *testing.T) {
	s := DefaultSizing()

	raw, err := s.CalcRawQty(Intent{Long, OpOpen}, acct("10"), pos(models.PositionNone, "0"), px("3"))
	require.NoError(t, err)
	assert.True(t, raw.Mul(d("3")).LessThanOrEqual(d("10")))
	assert.Equal(t, "3.3333333333333333", raw.String())
}

func TestCalcRawQtyIncreaseUsesRemainingBalance(t *testing.T) {
	s := DefaultSizing()

	// занято 2 * 100 = 200, остаётся 800 -> 8
	raw, err := s.CalcRawQty(Intent{Long, OpIncrease}, acct("1000"), pos(models.PositionLong, "2"), px("100"))
	require.NoError(t, err)
	assert.True(t, raw.Equal(d("8")), raw.String())
}

func TestCalcRawQtyIncreaseRespectsBalanceFraction(t *testing.T) {
	s := Sizing{MinNotional: d("5"), BalanceFraction: d("0.5")}

	open, err := s.CalcRawQty(Intent{Short, OpOpen}, acct("1000"), pos(models.PositionNone, "0"), px("100"))
	require.NoError(t, err)

	// без позиции добавление не больше открытия: 1000 * 0.5 / 100 = 5
	flat, err := s.CalcRawQty(Intent{Short, OpIncrease}, acct("1000"), pos(models.PositionNone, "0"), px("100"))
	require.NoError(t, err)
	assert.True(t, flat.Equal(d("5")), flat.String())
	assert.True(t, flat.Equal(open))

	// 500 - 2 * 100 = 300 -> 3
	held, err := s.CalcRawQty(Intent{Short, OpIncrease}, acct("1000"), pos(models.PositionShort, "2"), px("100"))
	require.NoError(t, err)
	assert.True(t, held.Equal(d("3")), held.String())

	// 500 - 5 * 100 = 0
	_, err = s.CalcRawQty(Intent{Short, OpIncrease}, acct("1000"), pos(models.PositionShort, "5"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCalcRawQtyIncreaseExhausted(t *testing.T) {
	s := DefaultSizing()

	_, err := s.CalcRawQty(Intent{Short, OpIncrease}, acct("1000"), pos(models.PositionShort, "12"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// 1000 - 9.98*100 = 2 < 5
	_, err = s.CalcRawQty(Intent{Short, OpIncrease}, acct("1000"), pos(models.PositionShort, "9.98"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCalcRawQtyOpenBelowMinNotional(t *testing.T) {
	s := DefaultSizing()

	_, err := s.CalcRawQty(Intent{Long, OpOpen}, acct("4.99"), pos(models.PositionNone, "0"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = s.CalcRawQty(Intent{Long, OpOpen}, acct("0"), pos(models.PositionNone, "0"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCalcRawQtyZeroMinNotionalStillNeedsBalance(t *testing.T) {
	s := Sizing{MinNotional: decimal.Zero, BalanceFraction: d("1")}

	_, err := s.CalcRawQty(Intent{Long, OpOpen}, acct("0"), pos(models.PositionNone, "0"), px("100"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCalcRawQtyClose(t *testing.T) {
	s := DefaultSizing()

	raw, err := s.CalcRawQty(Intent{Long, OpClosePartial}, models.AccountState{}, pos(models.PositionLong, "2.0"), px("100"))
	require.NoError(t, err)
	assert.True(t, raw.Equal(d("1")), raw.String())

	raw, err = s.CalcRawQty(Intent{Short, OpCloseFull}, models.AccountState{}, pos(models.PositionShort, "0.333"), px("100"))
	require.NoError(t, err)
	assert.True(t, raw.Equal(d("0.333")), raw.String())
}

func TestCalcRawQtyCloseWithoutPosition(t *testing.T) {
	s := DefaultSizing()

	_, err := s.CalcRawQty(Intent{Long, OpCloseFull}, models.AccountState{}, pos(models.PositionNone, "0"), px("100"))
	assert.ErrorIs(t, err, ErrNoPosition)
}
