package webhook

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_trader/internal/modules/config"
	"signal_trader/internal/modules/webhook/service"
	"signal_trader/internal/notify"
	"signal_trader/internal/runner"
)

func NewHandler(cfg *config.Config, engine *runner.Engine, n notify.Notifier, log *zap.Logger) (*service.Handler, error) {
	syn, err := service.LoadSynonyms(cfg.Webhook.SynonymsFile)
	if err != nil {
		return nil, err
	}
	return service.NewHandler(engine, n, syn, service.Config{
		Secret:        cfg.Webhook.Secret,
		DefaultSymbol: cfg.Webhook.DefaultSymbol,
		Timeout:       cfg.Bybit.Timeout * 3,
	}, log.Named("webhook")), nil
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, h *service.Handler, log *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)

	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			log.Info("[WEBHOOK] listening", zap.String("addr", addr), zap.String("path", cfg.Webhook.Path))
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					log.Error("[WEBHOOK] serve", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module — HTTP-приём сигналов от алертов.
func Module() fx.Option {
	return fx.Module("webhook",
		fx.Provide(NewHandler),
		fx.Invoke(RunHTTP),
	)
}
