package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// State — живость процесса, готовность и последние цены из стрима тикеров.
// Цены только для наблюдения: расчёт ордеров их не читает.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds

	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewState() *State {
	return &State{
		startedAt: time.Now(),
		prices:    make(map[string]decimal.Decimal),
	}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

// SetLastPrice обновляет доску цен и время последнего тика.
func (s *State) SetLastPrice(symbol string, price decimal.Decimal, at time.Time) {
	s.mu.Lock()
	s.prices[symbol] = price
	s.mu.Unlock()
	s.TouchTick(at)
}

// LastPrices — копия доски цен.
func (s *State) LastPrices() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.prices))
	for sym, p := range s.prices {
		out[sym] = p.String()
	}
	return out
}
