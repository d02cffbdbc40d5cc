package runner

import (
	"context"
	"sync"
)

// SymbolLocker — эксклюзивная секция на символ. Разные символы друг друга
// не блокируют. Записи удаляются, когда не осталось ни владельца, ни ожидающих.
type SymbolLocker struct {
	mu    sync.Mutex
	locks map[string]*symbolLock
}

type symbolLock struct {
	ch   chan struct{}
	refs int
}

func NewSymbolLocker() *SymbolLocker {
	return &SymbolLocker{locks: make(map[string]*symbolLock)}
}

func (l *SymbolLocker) acquireRef(symbol string) *symbolLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl, ok := l.locks[symbol]
	if !ok {
		sl = &symbolLock{ch: make(chan struct{}, 1)}
		l.locks[symbol] = sl
	}
	sl.refs++
	return sl
}

func (l *SymbolLocker) releaseRef(symbol string, sl *symbolLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, symbol)
	}
}

// WithSymbolLock выполняет body под блокировкой символа. Ожидание прерывается
// отменой ctx; блокировка освобождается на любом выходе из body, включая панику.
func (l *SymbolLocker) WithSymbolLock(ctx context.Context, symbol string, body func() error) error {
	sl := l.acquireRef(symbol)
	defer l.releaseRef(symbol, sl)

	select {
	case sl.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-sl.ch }()

	return body()
}

// Len — число символов с активными или ожидающими секциями.
func (l *SymbolLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
