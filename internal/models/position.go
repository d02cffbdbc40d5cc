package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionSide сторона открытой позиции на бирже.
type PositionSide string

const (
	PositionNone  PositionSide = ""
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// PositionState — снимок позиции по символу (one-way режим).
type PositionState struct {
	Side PositionSide
	Size decimal.Decimal
}

// Validate проверяет инвариант side = None <=> size = 0.
func (p PositionState) Validate() error {
	if p.Size.IsNegative() {
		return fmt.Errorf("negative position size %s", p.Size)
	}
	switch p.Side {
	case PositionNone:
		if !p.Size.IsZero() {
			return fmt.Errorf("flat position with size %s", p.Size)
		}
	case PositionLong, PositionShort:
		if !p.Size.IsPositive() {
			return fmt.Errorf("%s position with size %s", p.Side, p.Size)
		}
	default:
		return fmt.Errorf("unknown position side %q", p.Side)
	}
	return nil
}

// AccountState — доступный баланс в валюте расчётов (USDT).
type AccountState struct {
	AvailableBalance decimal.Decimal
}
