package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	bootstrap "signal_trader/internal/modules/bootstrap/service"
	"signal_trader/internal/modules/config"
	health "signal_trader/internal/modules/health/service"
	rules "signal_trader/internal/modules/lot_rules/service"
)

func newWarmuper(p *rules.Provider, state *health.State, log *zap.Logger) *bootstrap.Warmuper {
	return bootstrap.NewWarmuper(p, state, log.Named("bootstrap"))
}

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			newWarmuper,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, wu *bootstrap.Warmuper) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go wu.Warmup(runCtx, cfg.Symbols)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
