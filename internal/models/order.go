package models

import "github.com/shopspring/decimal"

type OrderSide string

const (
	OrderBuy  OrderSide = "Buy"
	OrderSell OrderSide = "Sell"
)

// OrderIntent — единственный выход движка: рыночный ордер к отправке.
type OrderIntent struct {
	Symbol     string
	Side       OrderSide
	Qty        decimal.Decimal
	ReduceOnly bool
}

type OrderResult struct {
	Accepted        bool
	ExchangeOrderID string
}
