package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"signal_trader/internal/models"
)

// Source — первоисточник правил лота (биржа).
type Source interface {
	GetLotRule(ctx context.Context, symbol string) (models.LotRule, error)
}

// Store — постоянный кэш правил. Может отсутствовать.
type Store interface {
	Get(ctx context.Context, symbol string) (models.LotRule, bool, error)
	Save(ctx context.Context, symbol string, rule models.LotRule) error
}

// Provider: память -> Store -> биржа. Правила лота статичны, поэтому кэшируются
// без TTL; Invalidate сбрасывает символ вручную.
type Provider struct {
	src   Source
	store Store
	log   *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]models.LotRule

	// ограничитель параллелизма для Warm, чтобы не словить rate limit
	sem chan struct{}
}

func NewProvider(src Source, store Store, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		src:   src,
		store: store,
		log:   log,
		cache: make(map[string]models.LotRule),
		sem:   make(chan struct{}, 4),
	}
}

func (p *Provider) GetLotRule(ctx context.Context, symbol string) (models.LotRule, error) {
	p.mu.RLock()
	rule, ok := p.cache[symbol]
	p.mu.RUnlock()
	if ok {
		return rule, nil
	}

	// загрузка общая для всех ждущих, поэтому не зависит от отмены ctx
	// первого вызвавшего; время ограничивает таймаут клиента биржи
	ch := p.group.DoChan(symbol, func() (any, error) {
		return p.load(context.WithoutCancel(ctx), symbol)
	})
	select {
	case <-ctx.Done():
		return models.LotRule{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.LotRule{}, res.Err
		}
		return res.Val.(models.LotRule), nil
	}
}

func (p *Provider) load(ctx context.Context, symbol string) (models.LotRule, error) {
	if p.store != nil {
		rule, ok, err := p.store.Get(ctx, symbol)
		switch {
		case err != nil:
			p.log.Warn("lot rule store read failed", zap.String("symbol", symbol), zap.Error(err))
		case ok:
			p.remember(symbol, rule)
			return rule, nil
		}
	}

	rule, err := p.src.GetLotRule(ctx, symbol)
	if err != nil {
		return models.LotRule{}, fmt.Errorf("lot rule %s: %w", symbol, err)
	}
	p.remember(symbol, rule)

	if p.store != nil {
		if err := p.store.Save(ctx, symbol, rule); err != nil {
			p.log.Warn("lot rule store write failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return rule, nil
}

func (p *Provider) remember(symbol string, rule models.LotRule) {
	p.mu.Lock()
	p.cache[symbol] = rule
	p.mu.Unlock()
}

func (p *Provider) Invalidate(symbol string) {
	p.mu.Lock()
	delete(p.cache, symbol)
	p.mu.Unlock()
}

// Warm подгружает правила для списка символов. Ошибки по отдельным символам
// логируются; возвращается число успешно прогретых.
func (p *Provider) Warm(ctx context.Context, symbols []string) int {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, sym := range symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case p.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-p.sem }()

			rule, err := p.GetLotRule(ctx, sym)
			if err != nil {
				p.log.Warn("lot rule warmup failed", zap.String("symbol", sym), zap.Error(err))
				return
			}
			p.log.Debug("lot rule warmed",
				zap.String("symbol", sym),
				zap.Stringer("step", rule.Step),
				zap.Stringer("min_qty", rule.MinQty),
			)
			mu.Lock()
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()
	return ok
}
