package runner

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_trader/internal/modules/config"
)

func NewSizing(cfg *config.Config) Sizing {
	return Sizing{
		MinNotional:     cfg.MinNotional(),
		BalanceFraction: cfg.BalanceFraction(),
	}
}

type engineParams struct {
	fx.In

	Market  MarketData
	Account AccountReader
	Rules   LotRuleProvider
	Orders  OrderDispatcher
	Sizing  Sizing
	Log     *zap.Logger
}

func newEngine(p engineParams) *Engine {
	return NewEngine(p.Market, p.Account, p.Rules, p.Orders, p.Sizing, p.Log.Named("runner"))
}

// Module — движок обработки сигналов.
func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewSizing,
			newEngine,
		),
	)
}
