package service

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
)

const settleCoin = "USDT"

// GetAccountState — доступный USDT единого счёта. Берём строку монеты USDT
// (availableToTrade, затем availableToWithdraw); если биржа их не отдаёт,
// totalAvailableBalance счёта в USD.
// symbol не используется: маржа на unified-счёте общая.
func (c *Client) GetAccountState(ctx context.Context, _ string) (models.AccountState, error) {
	q := url.Values{}
	q.Set("accountType", c.accountType)
	q.Set("coin", settleCoin)

	var r envelope[walletBalanceResult]
	if err := c.get(ctx, "/v5/account/wallet-balance", q, true, &r); err != nil {
		return models.AccountState{}, err
	}
	if err := checkRet(r.RetCode, r.RetMsg); err != nil {
		return models.AccountState{}, err
	}
	if len(r.Result.List) == 0 {
		return models.AccountState{}, errors.Errorf("wallet %s: empty account list", c.accountType)
	}
	acc := r.Result.List[0]

	field, raw := "totalAvailableBalance", acc.TotalAvailableBalance
	for _, coin := range acc.Coin {
		if coin.Coin != settleCoin {
			continue
		}
		switch {
		case coin.AvailableToTrade != "":
			field, raw = "availableToTrade", coin.AvailableToTrade
		case coin.AvailableToWithdraw != "":
			field, raw = "availableToWithdraw", coin.AvailableToWithdraw
		}
	}
	if raw == "" {
		return models.AccountState{}, errors.Errorf("wallet %s: available balance missing", c.accountType)
	}

	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return models.AccountState{}, errors.Wrapf(err, "wallet %s %q", field, raw)
	}
	if bal.IsNegative() {
		return models.AccountState{}, errors.Errorf("wallet %s negative: %s", field, bal)
	}
	return models.AccountState{AvailableBalance: bal}, nil
}
