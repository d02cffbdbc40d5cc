package service

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

// GetPrice — lastPrice по тикеру. Пустой список или пустое поле — ошибка, не ноль.
func (c *Client) GetPrice(ctx context.Context, symbol string) (models.PriceQuote, error) {
	q := url.Values{}
	q.Set("category", categoryLinear)
	q.Set("symbol", symbol)

	var r envelope[tickersResult]
	if err := c.get(ctx, "/v5/market/tickers", q, false, &r); err != nil {
		return models.PriceQuote{}, err
	}
	if err := checkRet(r.RetCode, r.RetMsg); err != nil {
		return models.PriceQuote{}, err
	}
	if len(r.Result.List) == 0 {
		return models.PriceQuote{}, errors.Errorf("ticker %s not found", symbol)
	}

	px, err := decimal.NewFromString(r.Result.List[0].LastPrice)
	if err != nil {
		return models.PriceQuote{}, errors.Wrapf(err, "ticker %s lastPrice %q", symbol, r.Result.List[0].LastPrice)
	}
	return models.PriceQuote{Price: px}, nil
}
