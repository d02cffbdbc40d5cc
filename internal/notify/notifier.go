package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"signal_trader/internal/runner"
)

// Notifier — уведомление оператора об исходе сигнала. Не блокирует обработку.
type Notifier interface {
	Notify(ctx context.Context, out runner.Outcome)
}

// Format — текст уведомления. Отказ биржи и деградация оракула
// отличаются от штатного отказа.
func Format(out runner.Outcome) string {
	head := fmt.Sprintf("%s %s", out.Symbol, strings.ToUpper(out.Action))

	switch out.Kind {
	case runner.OutcomeOrderPlaced:
		return fmt.Sprintf("✅ %s\n%s %s (%s)\norder: %s",
			head, out.Side, out.Qty.String(), out.Intent, out.OrderID)
	case runner.OutcomeRejected:
		if out.Reason == runner.ReasonExchangeRejected {
			return fmt.Sprintf("⛔️ %s\nбиржа отклонила %s %s\n%v",
				head, out.Side, out.Qty.String(), out.Err)
		}
		return fmt.Sprintf("❌ %s\nотклонено: %s", head, out.Reason)
	case runner.OutcomeOracleFailure:
		if out.Oracle == runner.OracleDispatch {
			return fmt.Sprintf("❓ %s\nордер %s %s отправлен, ответа биржи нет: проверьте позицию\n%v",
				head, out.Side, out.Qty.String(), out.Err)
		}
		oracle := string(out.Oracle)
		if oracle == "" {
			oracle = "unknown"
		}
		return fmt.Sprintf("⚠️ %s\nдеградация: оракул %s недоступен\n%v", head, oracle, out.Err)
	default:
		return fmt.Sprintf("⏹ %s\nотменено: %v", head, out.Err)
	}
}

type sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram — пассивный нотифайер в один чат. Сообщения уходят из фоновой
// горутины; при переполнении очереди сообщение пишется в лог и теряется.
type Telegram struct {
	bot    sender
	chatID int64
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan string
	wg     sync.WaitGroup
}

const queueSize = 64

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegram(b, chatID, log), nil
}

func newTelegram(bot sender, chatID int64, log *zap.Logger) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		log:    log,
		queue:  make(chan string, queueSize),
	}
}

func (t *Telegram) Notify(_ context.Context, out runner.Outcome) {
	text := Format(out)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		t.log.Info("[NOTIFY] stopped, message skipped", zap.String("text", text))
		return
	}
	select {
	case t.queue <- text:
	default:
		t.log.Warn("[NOTIFY] queue full, message dropped", zap.String("text", text))
	}
}

// Start запускает отправку. Stop дожидается, пока очередь опустеет.
func (t *Telegram) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case text, ok := <-t.queue:
				if !ok {
					return
				}
				if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, text)); err != nil {
					t.log.Warn("[NOTIFY] telegram send failed", zap.Error(err))
				}
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Log — нотифайер без Telegram: всё пишет в zap.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

func (l *Log) Notify(_ context.Context, out runner.Outcome) {
	text := Format(out)
	if out.Degraded() {
		l.log.Error("[NOTIFY] " + text)
		return
	}
	l.log.Info("[NOTIFY] " + text)
}
