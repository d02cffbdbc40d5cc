package runner

import (
	"errors"
	"fmt"
)

// Reason код отказа по сигналу.
type Reason string

const (
	ReasonUnknownSignal         Reason = "unknown_signal"
	ReasonOppositeDirectionOpen Reason = "opposite_direction_open"
	ReasonNoMatchingPosition    Reason = "no_matching_position"
	ReasonNoPosition            Reason = "no_position"
	ReasonInsufficientFunds     Reason = "insufficient_funds"
	ReasonBelowMinimumLot       Reason = "below_minimum_lot"
	ReasonExchangeRejected      Reason = "exchange_rejected"
)

// Rejection — терминальный отказ по сигналу. errors.Is сравнивает только Reason.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + ": " + r.Detail
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

var (
	ErrUnknownSignal         = &Rejection{Reason: ReasonUnknownSignal}
	ErrOppositeDirectionOpen = &Rejection{Reason: ReasonOppositeDirectionOpen}
	ErrNoMatchingPosition    = &Rejection{Reason: ReasonNoMatchingPosition}
	ErrNoPosition            = &Rejection{Reason: ReasonNoPosition}
	ErrInsufficientFunds     = &Rejection{Reason: ReasonInsufficientFunds}
	ErrBelowMinimumLot       = &Rejection{Reason: ReasonBelowMinimumLot}
	ErrExchangeRejected      = &Rejection{Reason: ReasonExchangeRejected}
)

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Oracle — какой из внешних источников данных отказал.
type Oracle string

const (
	OraclePrice    Oracle = "price"
	OracleAccount  Oracle = "account"
	OraclePosition Oracle = "position"
	OracleLotRule  Oracle = "lot_rule"
	// OracleDispatch — ответа биржи на ордер нет (таймаут, транспорт),
	// исход ордера неизвестен.
	OracleDispatch Oracle = "dispatch"
)

// OracleError — сбой или некорректный ответ источника данных.
type OracleError struct {
	Oracle Oracle
	Err    error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s oracle: %v", e.Oracle, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// VenueRejection реализуют ошибки, которыми биржа явно отклонила запрос.
// Только они превращаются в exchange_rejected.
type VenueRejection interface {
	error
	RejectedByVenue() bool
}

func isVenueRejection(err error) bool {
	var vr VenueRejection
	return errors.As(err, &vr) && vr.RejectedByVenue()
}
