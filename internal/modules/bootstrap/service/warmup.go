package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type LotRuleWarmer interface {
	Warm(ctx context.Context, symbols []string) int
}

type ReadySetter interface {
	SetReady(v bool)
}

// Warmuper прогревает правила лота и после этого открывает /readyz.
// Символы без правил не блокируют готовность: их правила подтянутся
// при первом сигнале.
type Warmuper struct {
	rules LotRuleWarmer
	state ReadySetter
	log   *zap.Logger
}

func NewWarmuper(rules LotRuleWarmer, state ReadySetter, log *zap.Logger) *Warmuper {
	return &Warmuper{rules: rules, state: state, log: log}
}

func (w *Warmuper) Warmup(ctx context.Context, symbols []string) {
	start := time.Now()
	loaded := 0
	if len(symbols) > 0 {
		loaded = w.rules.Warm(ctx, symbols)
	}

	if loaded < len(symbols) {
		w.log.Warn("[BOOT] warmup incomplete",
			zap.Int("loaded", loaded),
			zap.Int("symbols", len(symbols)),
		)
	}
	w.log.Info("[BOOT] warmup done",
		zap.Int("loaded", loaded),
		zap.Duration("took", time.Since(start)),
	)

	if ctx.Err() != nil {
		return
	}
	w.state.SetReady(true)
}
