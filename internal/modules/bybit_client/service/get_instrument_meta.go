package service

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

func (c *Client) GetInstrument(ctx context.Context, symbol string) (Instrument, error) {
	q := url.Values{}
	q.Set("category", categoryLinear)
	q.Set("symbol", symbol)

	var r envelope[instrumentsResult]
	if err := c.get(ctx, "/v5/market/instruments-info", q, false, &r); err != nil {
		return Instrument{}, err
	}
	if err := checkRet(r.RetCode, r.RetMsg); err != nil {
		return Instrument{}, err
	}
	if len(r.Result.List) == 0 {
		return Instrument{}, errors.Errorf("instrument %s not found", symbol)
	}

	inst := r.Result.List[0]
	if inst.Status != "" && inst.Status != "Trading" {
		return Instrument{}, errors.Errorf("instrument %s not trading: status=%s", symbol, inst.Status)
	}
	return inst, nil
}

// GetLotRule — qtyStep и minOrderQty инструмента.
func (c *Client) GetLotRule(ctx context.Context, symbol string) (models.LotRule, error) {
	inst, err := c.GetInstrument(ctx, symbol)
	if err != nil {
		return models.LotRule{}, err
	}

	parsePos := func(name, s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, errors.Errorf("%s %s empty", symbol, name)
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "%s %s parse %q", symbol, name, s)
		}
		if !v.IsPositive() {
			return decimal.Zero, errors.Errorf("%s %s <= 0: %s", symbol, name, s)
		}
		return v, nil
	}

	step, err := parsePos("qtyStep", inst.LotSizeFilter.QtyStep)
	if err != nil {
		return models.LotRule{}, err
	}
	minQty, err := parsePos("minOrderQty", inst.LotSizeFilter.MinOrderQty)
	if err != nil {
		return models.LotRule{}, err
	}
	return models.LotRule{Step: step, MinQty: minQty}, nil
}
