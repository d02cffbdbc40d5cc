package runner

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

type OutcomeKind string

const (
	OutcomeOrderPlaced   OutcomeKind = "order_placed"
	OutcomeRejected      OutcomeKind = "rejected"
	OutcomeOracleFailure OutcomeKind = "oracle_failure"
	// OutcomeCanceled — вызывающий отменил ctx до входа в секцию символа.
	OutcomeCanceled OutcomeKind = "canceled"
)

// Outcome — результат обработки одного сигнала.
type Outcome struct {
	Kind   OutcomeKind
	Symbol string
	Action string
	Intent Intent

	// заполнены, если ордер был сформирован
	Side    models.OrderSide
	Qty     decimal.Decimal
	OrderID string

	Reason Reason
	Oracle Oracle
	Err    error
}

// Degraded — сбой инфраструктуры, а не штатный отказ.
func (o Outcome) Degraded() bool {
	return o.Kind == OutcomeOracleFailure
}

func (o Outcome) withError(err error) Outcome {
	o.Err = err

	var rej *Rejection
	var oe *OracleError
	switch {
	case errors.As(err, &rej):
		o.Kind = OutcomeRejected
		o.Reason = rej.Reason
	case errors.As(err, &oe):
		o.Kind = OutcomeOracleFailure
		o.Oracle = oe.Oracle
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		o.Kind = OutcomeCanceled
	default:
		o.Kind = OutcomeOracleFailure
	}
	return o
}
