package models

import "github.com/shopspring/decimal"

// PriceQuote последняя цена инструмента.
type PriceQuote struct {
	Price decimal.Decimal
}

// LotRule — ограничения биржи на количество: шаг и минимальный размер.
type LotRule struct {
	Step   decimal.Decimal
	MinQty decimal.Decimal
}
