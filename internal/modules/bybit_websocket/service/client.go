package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"signal_trader/internal/metrics"
)

// Sink — получатель тикеров. Для наблюдения, не для расчёта ордеров.
type Sink interface {
	SetWSConnected(v bool)
	SetLastPrice(symbol string, price decimal.Decimal, at time.Time)
}

type Config struct {
	URL         string
	PingEvery   time.Duration
	BackoffStep time.Duration
	MaxBackoff  time.Duration
}

// Client — публичный стрим tickers.<symbol> Bybit v5 с переподключением.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.PingEvery <= 0 {
		cfg.PingEvery = 20 * time.Second
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log,
	}
}

type tickerFrame struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Ts    int64  `json:"ts"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

// Run держит соединение до отмены ctx. Пауза между попытками растёт
// линейно до MaxBackoff и сбрасывается после сессии с данными.
func (c *Client) Run(ctx context.Context, symbols []string, sink Sink) {
	if len(symbols) == 0 {
		c.log.Info("[WS] no symbols configured, stream disabled")
		return
	}

	attempt := 0
	for {
		received, err := c.session(ctx, symbols, sink)
		sink.SetWSConnected(false)
		if ctx.Err() != nil {
			return
		}
		if received {
			attempt = 0
		}
		attempt++

		delay := time.Duration(attempt) * c.cfg.BackoffStep
		if delay > c.cfg.MaxBackoff {
			delay = c.cfg.MaxBackoff
		}
		c.log.Warn("[WS] tickers stream dropped",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (c *Client) session(ctx context.Context, symbols []string, sink Sink) (received bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	args := make([]string, 0, len(symbols))
	for _, s := range symbols {
		args = append(args, "tickers."+s)
	}
	if err := conn.WriteJSON(map[string]any{"op": "subscribe", "args": args}); err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}
	sink.SetWSConnected(true)
	c.log.Info("[WS] tickers subscribed", zap.Strings("symbols", symbols))

	// пинг каждые PingEvery, иначе Bybit закрывает соединение
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(c.cfg.PingEvery)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				// разблокирует ReadMessage
				_ = conn.Close()
				return
			case <-t.C:
				_ = conn.WriteJSON(map[string]string{"op": "ping"})
			}
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return received, fmt.Errorf("read: %w", err)
		}

		var frame tickerFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if !strings.HasPrefix(frame.Topic, "tickers.") || frame.Data.LastPrice == "" {
			// pong, ответ на subscribe или delta без цены
			continue
		}
		price, err := decimal.NewFromString(frame.Data.LastPrice)
		if err != nil || !price.IsPositive() {
			continue
		}

		symbol := frame.Data.Symbol
		if symbol == "" {
			symbol = strings.TrimPrefix(frame.Topic, "tickers.")
		}
		at := time.Now()
		if frame.Ts > 0 {
			at = time.UnixMilli(frame.Ts)
		}

		received = true
		metrics.TickerUpdatesTotal.WithLabelValues(symbol).Inc()
		sink.SetLastPrice(symbol, price, at)
	}
}
