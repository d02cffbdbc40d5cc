package bybit_websocket

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_trader/internal/modules/bybit_websocket/service"
	"signal_trader/internal/modules/config"
	health "signal_trader/internal/modules/health/service"
)

func NewClient(cfg *config.Config, log *zap.Logger) *service.Client {
	return service.NewClient(service.Config{URL: cfg.Bybit.WSURL}, log.Named("ws"))
}

// Module поднимает стрим тикеров для доски цен на /healthz.
func Module() fx.Option {
	return fx.Module("bybit_websocket",
		fx.Provide(
			NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, cfg *config.Config, state *health.State) {
			runCtx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						defer close(done)
						c.Run(runCtx, cfg.Symbols, state)
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-ctx.Done():
					}
					return nil
				},
			})
		}),
	)
}
