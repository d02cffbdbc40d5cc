package lot_rules

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	bybit "signal_trader/internal/modules/bybit_client/service"
	"signal_trader/internal/modules/lot_rules/service"
	"signal_trader/internal/modules/lot_rules/service/pg"
	"signal_trader/internal/runner"
	"signal_trader/pkg/db"
)

type params struct {
	fx.In

	Client *bybit.Client
	DB     *db.PgTxManager `optional:"true"`
	Log    *zap.Logger
}

func newProvider(lc fx.Lifecycle, p params) *service.Provider {
	// без DSN работаем только на памяти
	if p.DB == nil {
		return service.NewProvider(p.Client, nil, p.Log)
	}

	store := pg.NewLotRule(p.DB)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureSchema(ctx)
		},
	})
	return service.NewProvider(p.Client, store, p.Log)
}

func Module() fx.Option {
	return fx.Module("lot_rules",
		fx.Provide(
			newProvider,
			func(p *service.Provider) runner.LotRuleProvider { return p },
		),
	)
}
