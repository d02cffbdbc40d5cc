package main

import (
	"context"
	"log"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"signal_trader/internal/modules/bootstrap"
	"signal_trader/internal/modules/bybit_client"
	"signal_trader/internal/modules/bybit_websocket"
	"signal_trader/internal/modules/config"
	"signal_trader/internal/modules/health"
	"signal_trader/internal/modules/lot_rules"
	"signal_trader/internal/modules/postgres"
	"signal_trader/internal/modules/webhook"
	"signal_trader/internal/notify"
	"signal_trader/internal/runner"
	"signal_trader/pkg/logger"
	"signal_trader/pkg/tracing"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(cfg.Tracing.ServiceName)
	return logger.New(cfg.Log.Level, cfg.Log.Development)
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Host:        cfg.Tracing.Host,
		Port:        cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return tracer, nil
}

func main() {
	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		config.Module(),
		fx.Provide(
			newLogger,
			newTracer,
		),
		fx.Invoke(func(opentracing.Tracer) {}),
		postgres.Module(),
		bybit_client.Module(),
		lot_rules.Module(),
		runner.Module(),
		notify.Module(),
		health.Module(),
		bybit_websocket.Module(),
		bootstrap.Module(),
		webhook.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
