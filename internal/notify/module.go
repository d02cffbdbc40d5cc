package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_trader/internal/modules/config"
)

func NewNotifier(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (Notifier, error) {
	log = log.Named("notify")
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		log.Info("telegram is not configured, notifications go to log")
		return NewLog(log), nil
	}

	t, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			t.Start(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			t.Stop()
			cancel()
			return nil
		},
	})
	return t, nil
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(NewNotifier),
	)
}
