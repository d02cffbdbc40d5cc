package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"signal_trader/internal/models"
	"signal_trader/internal/runner"
)

func TestFormat(t *testing.T) {
	placed := runner.Outcome{
		Kind:    runner.OutcomeOrderPlaced,
		Symbol:  "ETHUSDT",
		Action:  "buy",
		Intent:  runner.Intent{Direction: runner.Long, Operation: runner.OpOpen},
		Side:    models.OrderBuy,
		Qty:     decimal.RequireFromString("10"),
		OrderID: "abc",
	}
	text := Format(placed)
	assert.Contains(t, text, "✅ ETHUSDT BUY")
	assert.Contains(t, text, "Buy 10")
	assert.Contains(t, text, "abc")

	rejected := runner.Outcome{Kind: runner.OutcomeRejected, Symbol: "ETHUSDT", Action: "SELL", Reason: runner.ReasonOppositeDirectionOpen}
	assert.Contains(t, Format(rejected), "opposite_direction_open")

	exch := runner.Outcome{
		Kind: runner.OutcomeRejected, Symbol: "ETHUSDT", Action: "BUY",
		Reason: runner.ReasonExchangeRejected, Side: models.OrderBuy,
		Qty: decimal.RequireFromString("1"), Err: errors.New("retCode=110007"),
	}
	assert.Contains(t, Format(exch), "биржа отклонила")
	assert.Contains(t, Format(exch), "110007")

	degraded := runner.Outcome{Kind: runner.OutcomeOracleFailure, Symbol: "ETHUSDT", Action: "BUY", Oracle: runner.OraclePrice, Err: errors.New("timeout")}
	assert.Contains(t, Format(degraded), "деградация: оракул price")

	unknown := runner.Outcome{
		Kind: runner.OutcomeOracleFailure, Symbol: "ETHUSDT", Action: "BUY",
		Oracle: runner.OracleDispatch, Side: models.OrderBuy,
		Qty: decimal.RequireFromString("1"), Err: errors.New("EOF"),
	}
	assert.Contains(t, Format(unknown), "ответа биржи нет")
	assert.NotContains(t, Format(unknown), "биржа отклонила")
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(c tgbot.Chattable) (tgbot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbot.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
	}
	return tgbot.Message{}, f.err
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestTelegramDeliversQueuedMessages(t *testing.T) {
	fs := &fakeSender{}
	tg := newTelegram(fs, 42, zap.NewNop())
	tg.Start(context.Background())

	tg.Notify(context.Background(), runner.Outcome{Kind: runner.OutcomeRejected, Symbol: "ETHUSDT", Action: "HODL", Reason: runner.ReasonUnknownSignal})
	tg.Stop()

	require.Len(t, fs.texts(), 1)
	assert.Contains(t, fs.texts()[0], "unknown_signal")
}

func TestTelegramDropsWhenQueueFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tg := newTelegram(&fakeSender{}, 42, zap.New(core))

	// воркер не запущен, очередь не разбирается
	for i := 0; i < queueSize+1; i++ {
		tg.Notify(context.Background(), runner.Outcome{Kind: runner.OutcomeCanceled, Symbol: "ETHUSDT"})
	}
	assert.Equal(t, 1, logs.FilterMessageSnippet("queue full").Len())
}

func TestTelegramSendErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fs := &fakeSender{err: errors.New("chat not found")}
	tg := newTelegram(fs, 42, zap.New(core))
	tg.Start(context.Background())

	tg.Notify(context.Background(), runner.Outcome{Kind: runner.OutcomeOrderPlaced, Symbol: "ETHUSDT"})
	require.Eventually(t, func() bool {
		return logs.FilterMessageSnippet("send failed").Len() == 1
	}, time.Second, time.Millisecond)
	tg.Stop()
}

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLog(zap.New(core))

	n.Notify(context.Background(), runner.Outcome{Kind: runner.OutcomeOrderPlaced, Symbol: "ETHUSDT"})
	n.Notify(context.Background(), runner.Outcome{Kind: runner.OutcomeOracleFailure, Symbol: "ETHUSDT", Oracle: runner.OracleAccount})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
