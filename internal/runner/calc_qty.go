package runner

import (
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

// divPrecision — знаков после запятой у сырого количества до округления по lotSz.
const divPrecision = 16

// Sizing — параметры расчёта размера.
type Sizing struct {
	// MinNotional — минимум USDT, ниже которого не открываем и не добавляем.
	MinNotional decimal.Decimal
	// BalanceFraction — доля доступного баланса для открытия (0, 1].
	BalanceFraction decimal.Decimal
}

func DefaultSizing() Sizing {
	return Sizing{
		MinNotional:     decimal.NewFromInt(5),
		BalanceFraction: decimal.NewFromInt(1),
	}
}

// divDown делит с усечением, чтобы не завысить количество на последнем знаке.
func divDown(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, divPrecision)
	return q
}

// CalcRawQty считает сырое количество до нормализации по лоту.
// Бюджет открытия и добавления ограничен balance * fraction.
//
//	open:     qty = balance * fraction / price
//	increase: qty = max(0, balance * fraction - size*price) / price
//	close:    qty = size * (0.5 | 1)
func (s Sizing) CalcRawQty(
	intent Intent,
	account models.AccountState,
	pos models.PositionState,
	price models.PriceQuote,
) (decimal.Decimal, error) {
	if intent.IsClose() {
		// Engine сюда без позиции не доходит: ValidateIntent отвечает NoPosition раньше
		if !pos.Size.IsPositive() {
			return decimal.Zero, reject(ReasonNoPosition, "%s with position size %s", intent, pos.Size)
		}
		return pos.Size.Mul(intent.Fraction()), nil
	}

	fraction := s.BalanceFraction
	if !fraction.IsPositive() {
		fraction = fullFraction
	}
	budget := account.AvailableBalance.Mul(fraction)

	deployable := budget
	if intent.Operation == OpIncrease {
		usedMargin := pos.Size.Mul(price.Price)
		deployable = decimal.Max(decimal.Zero, budget.Sub(usedMargin))
	}

	if deployable.LessThan(s.MinNotional) || !deployable.IsPositive() {
		return decimal.Zero, reject(ReasonInsufficientFunds,
			"%s: deployable %s below minimum notional %s", intent, deployable, s.MinNotional)
	}
	return divDown(deployable, price.Price), nil
}
