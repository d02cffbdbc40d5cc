package runner

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Direction int

const (
	Long Direction = iota + 1
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "unknown"
}

type Operation int

const (
	OpOpen Operation = iota + 1
	OpIncrease
	OpClosePartial
	OpCloseFull
)

func (o Operation) String() string {
	switch o {
	case OpOpen:
		return "open"
	case OpIncrease:
		return "increase"
	case OpClosePartial:
		return "close_partial"
	case OpCloseFull:
		return "close_full"
	}
	return "unknown"
}

var (
	halfFraction = decimal.NewFromFloat(0.5)
	fullFraction = decimal.NewFromInt(1)
)

// Intent — нормализованная пара (направление, операция).
type Intent struct {
	Direction Direction
	Operation Operation
}

func (i Intent) IsClose() bool {
	return i.Operation == OpClosePartial || i.Operation == OpCloseFull
}

// Fraction доля позиции для закрытия: 0.5 для частичного, 1 для полного.
func (i Intent) Fraction() decimal.Decimal {
	if i.Operation == OpClosePartial {
		return halfFraction
	}
	return fullFraction
}

func (i Intent) String() string {
	return i.Operation.String() + "_" + i.Direction.String()
}

// actions — канонический словарь действий. Синонимы транспорта
// (вебхука) приводятся к этим именам до вызова Classify.
var actions = map[string]Intent{
	"BUY":       {Long, OpOpen},
	"LONG":      {Long, OpOpen},
	"OPEN_LONG": {Long, OpOpen},

	"BUY_AGAIN":     {Long, OpIncrease},
	"LONG_AGAIN":    {Long, OpIncrease},
	"INCREASE_LONG": {Long, OpIncrease},

	"SELL":       {Short, OpOpen},
	"SHORT":      {Short, OpOpen},
	"OPEN_SHORT": {Short, OpOpen},

	"SELL_AGAIN":     {Short, OpIncrease},
	"SHORT_AGAIN":    {Short, OpIncrease},
	"INCREASE_SHORT": {Short, OpIncrease},

	"CLOSE_HALF_LONG": {Long, OpClosePartial},
	"CLOSE_LONG_HALF": {Long, OpClosePartial},
	"CLOSE_LONG":      {Long, OpCloseFull},

	"CLOSE_HALF_SHORT": {Short, OpClosePartial},
	"CLOSE_SHORT_HALF": {Short, OpClosePartial},
	"CLOSE_SHORT":      {Short, OpCloseFull},
}

// Classify сопоставляет сырое действие с Intent (без учёта регистра).
func Classify(rawAction string) (Intent, error) {
	key := strings.ToUpper(strings.TrimSpace(rawAction))
	intent, ok := actions[key]
	if !ok {
		return Intent{}, reject(ReasonUnknownSignal, "action %q", rawAction)
	}
	return intent, nil
}

// KnownActions возвращает канонические имена действий.
func KnownActions() []string {
	out := make([]string, 0, len(actions))
	for k := range actions {
		out = append(out, k)
	}
	return out
}
