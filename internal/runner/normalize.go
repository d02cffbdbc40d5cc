package runner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

// NormalizeQty округляет ВНИЗ до шага лота: floor(raw/step)*step, точная
// десятичная арифметика. Результат всегда <= raw и кратен step.
func NormalizeQty(raw decimal.Decimal, rule models.LotRule) (decimal.Decimal, error) {
	if !rule.Step.IsPositive() {
		return decimal.Zero, &OracleError{Oracle: OracleLotRule, Err: fmt.Errorf("step %s <= 0", rule.Step)}
	}
	steps, _ := raw.QuoRem(rule.Step, 0)
	if steps.IsNegative() {
		steps = decimal.Zero
	}
	qty := steps.Mul(rule.Step)

	if !qty.IsPositive() || qty.LessThan(rule.MinQty) {
		return decimal.Zero, reject(ReasonBelowMinimumLot,
			"qty %s (raw %s, step %s) below min %s", qty, raw, rule.Step, rule.MinQty)
	}
	return qty, nil
}
