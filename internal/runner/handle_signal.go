package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"signal_trader/internal/metrics"
	"signal_trader/internal/models"
)

type MarketData interface {
	GetPrice(ctx context.Context, symbol string) (models.PriceQuote, error)
}

type AccountReader interface {
	GetAccountState(ctx context.Context, symbol string) (models.AccountState, error)
	GetPositionState(ctx context.Context, symbol string) (models.PositionState, error)
}

type LotRuleProvider interface {
	GetLotRule(ctx context.Context, symbol string) (models.LotRule, error)
}

type OrderDispatcher interface {
	SubmitOrder(ctx context.Context, order models.OrderIntent) (models.OrderResult, error)
}

// Engine — классификация сигнала, проверка позиции, расчёт размера и
// отправка ордера. Всё, начиная со снимка цены, идёт под блокировкой символа.
type Engine struct {
	market  MarketData
	account AccountReader
	rules   LotRuleProvider
	orders  OrderDispatcher

	sizing Sizing
	locks  *SymbolLocker
	log    *zap.Logger
}

func NewEngine(
	market MarketData,
	account AccountReader,
	rules LotRuleProvider,
	orders OrderDispatcher,
	sizing Sizing,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		market:  market,
		account: account,
		rules:   rules,
		orders:  orders,
		sizing:  sizing,
		locks:   NewSymbolLocker(),
		log:     log,
	}
}

// HandleSignal обрабатывает один сигнал. Ретраев нет: любой отказ терминален.
func (e *Engine) HandleSignal(ctx context.Context, sig models.Signal) Outcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.HandleSignal")
	defer span.Finish()
	span.SetTag("symbol", sig.Symbol)
	span.SetTag("action", sig.Action)

	out := e.handle(ctx, sig)

	span.SetTag("outcome", string(out.Kind))
	if out.Err != nil {
		span.SetTag("error", true)
		span.LogKV("event", "error", "message", out.Err.Error())
	}
	e.observe(out)
	return out
}

func (e *Engine) handle(ctx context.Context, sig models.Signal) Outcome {
	out := Outcome{Symbol: sig.Symbol, Action: sig.Action}

	intent, err := Classify(sig.Action)
	if err != nil {
		return out.withError(err)
	}
	out.Intent = intent

	waitStart := time.Now()
	err = e.locks.WithSymbolLock(ctx, sig.Symbol, func() error {
		metrics.LockWaitSeconds.Observe(time.Since(waitStart).Seconds())

		order, err := e.decide(ctx, sig.Symbol, intent)
		if err != nil {
			return err
		}
		out.Side, out.Qty = order.Side, order.Qty

		res, err := e.dispatch(ctx, order)
		if err != nil {
			return err
		}
		out.OrderID = res.ExchangeOrderID
		return nil
	})
	if err != nil {
		return out.withError(err)
	}

	out.Kind = OutcomeOrderPlaced
	return out
}

// decide: цена (fail fast) -> позиция -> проверка -> баланс -> размер -> лот.
func (e *Engine) decide(ctx context.Context, symbol string, intent Intent) (models.OrderIntent, error) {
	price, err := e.fetchPrice(ctx, symbol)
	if err != nil {
		return models.OrderIntent{}, err
	}

	pos, err := e.fetchPosition(ctx, symbol)
	if err != nil {
		return models.OrderIntent{}, err
	}

	if err := ValidateIntent(intent, pos); err != nil {
		return models.OrderIntent{}, err
	}

	// для закрытия баланс не нужен
	var account models.AccountState
	if !intent.IsClose() {
		if account, err = e.fetchAccount(ctx, symbol); err != nil {
			return models.OrderIntent{}, err
		}
	}

	raw, err := e.sizing.CalcRawQty(intent, account, pos, price)
	if err != nil {
		return models.OrderIntent{}, err
	}

	rule, err := e.fetchLotRule(ctx, symbol)
	if err != nil {
		return models.OrderIntent{}, err
	}

	qty, err := NormalizeQty(raw, rule)
	if err != nil {
		return models.OrderIntent{}, err
	}

	e.log.Debug("order sized",
		zap.String("symbol", symbol),
		zap.Stringer("intent", intent),
		zap.Stringer("price", price.Price),
		zap.Stringer("position", pos.Size),
		zap.Stringer("raw_qty", raw),
		zap.Stringer("qty", qty),
	)
	return BuildOrder(symbol, intent, qty), nil
}

// BuildOrder: открытие long/закрытие short — Buy, наоборот — Sell.
// Закрывающие ордера всегда reduce-only.
func BuildOrder(symbol string, intent Intent, qty decimal.Decimal) models.OrderIntent {
	side := models.OrderBuy
	if (intent.Direction == Short) != intent.IsClose() {
		side = models.OrderSell
	}
	return models.OrderIntent{
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		ReduceOnly: intent.IsClose(),
	}
}

// dispatch отправляет ордер вне дедлайна вызывающего: запрос, ушедший на
// биржу, не бросаем на полпути. Время ограничивает таймаут клиента биржи.
func (e *Engine) dispatch(ctx context.Context, order models.OrderIntent) (models.OrderResult, error) {
	span, ctx := opentracing.StartSpanFromContext(context.WithoutCancel(ctx), "orders.SubmitOrder")
	defer span.Finish()

	res, err := e.orders.SubmitOrder(ctx, order)
	switch {
	case err != nil && isVenueRejection(err):
		return res, reject(ReasonExchangeRejected, "%v", err)
	case err != nil:
		span.SetTag("error", true)
		return res, &OracleError{Oracle: OracleDispatch, Err: err}
	case !res.Accepted:
		return res, reject(ReasonExchangeRejected, "order not accepted")
	}
	return res, nil
}

func (e *Engine) fetchPrice(ctx context.Context, symbol string) (models.PriceQuote, error) {
	var q models.PriceQuote
	err := traced(ctx, "oracle.GetPrice", func(ctx context.Context) (err error) {
		q, err = e.market.GetPrice(ctx, symbol)
		return err
	})
	if err != nil {
		return q, &OracleError{Oracle: OraclePrice, Err: err}
	}
	if !q.Price.IsPositive() {
		return q, &OracleError{Oracle: OraclePrice, Err: fmt.Errorf("unusable price %s", q.Price)}
	}
	return q, nil
}

func (e *Engine) fetchPosition(ctx context.Context, symbol string) (models.PositionState, error) {
	var p models.PositionState
	err := traced(ctx, "oracle.GetPositionState", func(ctx context.Context) (err error) {
		p, err = e.account.GetPositionState(ctx, symbol)
		return err
	})
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		return p, &OracleError{Oracle: OraclePosition, Err: err}
	}
	return p, nil
}

func (e *Engine) fetchAccount(ctx context.Context, symbol string) (models.AccountState, error) {
	var a models.AccountState
	err := traced(ctx, "oracle.GetAccountState", func(ctx context.Context) (err error) {
		a, err = e.account.GetAccountState(ctx, symbol)
		return err
	})
	if err == nil && a.AvailableBalance.IsNegative() {
		err = fmt.Errorf("negative available balance %s", a.AvailableBalance)
	}
	if err != nil {
		return a, &OracleError{Oracle: OracleAccount, Err: err}
	}
	return a, nil
}

func (e *Engine) fetchLotRule(ctx context.Context, symbol string) (models.LotRule, error) {
	var r models.LotRule
	err := traced(ctx, "oracle.GetLotRule", func(ctx context.Context) (err error) {
		r, err = e.rules.GetLotRule(ctx, symbol)
		return err
	})
	if err == nil && (!r.Step.IsPositive() || r.MinQty.IsNegative()) {
		err = fmt.Errorf("invalid lot rule step=%s min=%s", r.Step, r.MinQty)
	}
	if err != nil {
		return r, &OracleError{Oracle: OracleLotRule, Err: err}
	}
	return r, nil
}

func traced(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()
	err := fn(ctx)
	if err != nil {
		span.SetTag("error", true)
	}
	return err
}

func (e *Engine) observe(out Outcome) {
	metrics.SignalsTotal.WithLabelValues(string(out.Kind), string(out.Reason)).Inc()

	fields := []zap.Field{
		zap.String("symbol", out.Symbol),
		zap.String("action", out.Action),
		zap.String("outcome", string(out.Kind)),
	}
	switch out.Kind {
	case OutcomeOrderPlaced:
		metrics.OrdersTotal.WithLabelValues(out.Symbol, string(out.Side)).Inc()
		e.log.Info("order placed", append(fields,
			zap.String("side", string(out.Side)),
			zap.Stringer("qty", out.Qty),
			zap.String("order_id", out.OrderID),
		)...)
	case OutcomeRejected:
		e.log.Warn("signal rejected", append(fields,
			zap.String("reason", string(out.Reason)),
			zap.Error(out.Err),
		)...)
	case OutcomeOracleFailure:
		metrics.OracleFailuresTotal.WithLabelValues(string(out.Oracle)).Inc()
		e.log.Error("oracle failure", append(fields,
			zap.String("oracle", string(out.Oracle)),
			zap.Error(out.Err),
		)...)
	default:
		e.log.Warn("signal canceled", append(fields, zap.Error(out.Err))...)
	}
}
