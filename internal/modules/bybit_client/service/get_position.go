package service

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

// GetPositionState — позиция по символу. В one-way режиме строка одна;
// одновременные long и short (hedge) считаем ошибкой конфигурации счёта.
func (c *Client) GetPositionState(ctx context.Context, symbol string) (models.PositionState, error) {
	q := url.Values{}
	q.Set("category", categoryLinear)
	q.Set("symbol", symbol)

	var r envelope[positionListResult]
	if err := c.get(ctx, "/v5/position/list", q, true, &r); err != nil {
		return models.PositionState{}, err
	}
	if err := checkRet(r.RetCode, r.RetMsg); err != nil {
		return models.PositionState{}, err
	}

	long, short := decimal.Zero, decimal.Zero
	for _, p := range r.Result.List {
		if p.Symbol != "" && p.Symbol != symbol {
			continue
		}
		size, err := decimal.NewFromString(p.Size)
		if err != nil {
			return models.PositionState{}, errors.Wrapf(err, "position %s size %q", symbol, p.Size)
		}
		switch p.Side {
		case "Buy":
			long = long.Add(size)
		case "Sell":
			short = short.Add(size)
		case "", "None":
			if !size.IsZero() {
				return models.PositionState{}, errors.Errorf("position %s: no side with size %s", symbol, size)
			}
		default:
			return models.PositionState{}, errors.Errorf("position %s: unknown side %q", symbol, p.Side)
		}
	}

	switch {
	case long.IsPositive() && short.IsPositive():
		return models.PositionState{}, errors.Errorf("position %s: both long %s and short %s open (hedge mode)", symbol, long, short)
	case long.IsPositive():
		return models.PositionState{Side: models.PositionLong, Size: long}, nil
	case short.IsPositive():
		return models.PositionState{Side: models.PositionShort, Size: short}, nil
	}
	return models.PositionState{Side: models.PositionNone, Size: decimal.Zero}, nil
}
