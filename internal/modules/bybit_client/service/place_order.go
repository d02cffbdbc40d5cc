package service

import (
	"context"

	"github.com/pkg/errors"

	"signal_trader/internal/models"
)

// SubmitOrder отправляет рыночный ордер. Повторов нет.
func (c *Client) SubmitOrder(ctx context.Context, order models.OrderIntent) (models.OrderResult, error) {
	if !order.Qty.IsPositive() {
		return models.OrderResult{}, errors.Errorf("SubmitOrder %s: qty %s <= 0", order.Symbol, order.Qty)
	}

	body := createOrderRequest{
		Category:    categoryLinear,
		Symbol:      order.Symbol,
		Side:        string(order.Side),
		OrderType:   "Market",
		Qty:         order.Qty.String(),
		ReduceOnly:  order.ReduceOnly,
		PositionIdx: 0,
		OrderLinkID: c.newID(),
	}

	var r envelope[createOrderResult]
	if err := c.post(ctx, "/v5/order/create", body, &r); err != nil {
		return models.OrderResult{}, err
	}
	if err := checkRet(r.RetCode, r.RetMsg); err != nil {
		return models.OrderResult{}, err
	}
	if r.Result.OrderID == "" {
		return models.OrderResult{}, errors.Errorf("SubmitOrder %s: empty orderId", order.Symbol)
	}
	return models.OrderResult{Accepted: true, ExchangeOrderID: r.Result.OrderID}, nil
}
