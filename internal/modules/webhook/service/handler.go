package service

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"signal_trader/internal/models"
	"signal_trader/internal/notify"
	"signal_trader/internal/runner"
	"signal_trader/pkg/tracing"
)

const maxBodyBytes = 64 << 10

type SignalHandler interface {
	HandleSignal(ctx context.Context, sig models.Signal) runner.Outcome
}

type Config struct {
	Secret        string
	DefaultSymbol string
	// Timeout ограничивает ожидание секции символа и чтение снимков.
	// Отправку ордера ограничивает таймаут клиента биржи.
	Timeout time.Duration
}

type Handler struct {
	engine   SignalHandler
	notifier notify.Notifier
	synonyms Synonyms
	cfg      Config
	log      *zap.Logger
}

func NewHandler(engine SignalHandler, notifier notify.Notifier, synonyms Synonyms, cfg Config, log *zap.Logger) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Handler{
		engine:   engine,
		notifier: notifier,
		synonyms: synonyms,
		cfg:      cfg,
		log:      log,
	}
}

type request struct {
	Action     string `json:"action"`
	Symbol     string `json:"symbol"`
	Passphrase string `json:"passphrase"`
}

type Response struct {
	Status  string `json:"status"`
	Symbol  string `json:"symbol,omitempty"`
	Action  string `json:"action,omitempty"`
	Side    string `json:"side,omitempty"`
	Qty     string `json:"qty,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Oracle  string `json:"oracle,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.write(w, http.StatusMethodNotAllowed, Response{Status: "error", Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		h.write(w, http.StatusBadRequest, Response{Status: "error", Error: "unreadable body"})
		return
	}
	var req request
	if err := sonic.Unmarshal(body, &req); err != nil {
		h.write(w, http.StatusBadRequest, Response{Status: "error", Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		h.write(w, http.StatusBadRequest, Response{Status: "error", Error: "action is required"})
		return
	}
	if !h.authorized(req.Passphrase) {
		h.log.Warn("[WEBHOOK] bad passphrase", zap.String("remote", r.RemoteAddr))
		h.write(w, http.StatusUnauthorized, Response{Status: "error", Error: "unauthorized"})
		return
	}

	sig := models.Signal{
		Action: h.synonyms.Resolve(req.Action),
		Symbol: strings.ToUpper(strings.TrimSpace(req.Symbol)),
	}
	if sig.Symbol == "" {
		sig.Symbol = h.cfg.DefaultSymbol
	}

	// обрыв соединения клиентом не отменяет уже начатую обработку
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.Timeout)
	defer cancel()
	span, ctx := opentracing.StartSpanFromContext(ctx, "webhook.Signal")
	defer span.Finish()
	if id := tracing.TraceID(ctx); id != "" {
		w.Header().Set("X-Trace-Id", id)
	}

	out := h.engine.HandleSignal(ctx, sig)
	h.notifier.Notify(ctx, out)

	h.write(w, StatusCode(out), toResponse(out))
}

func (h *Handler) authorized(passphrase string) bool {
	if h.cfg.Secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(passphrase), []byte(h.cfg.Secret)) == 1
}

// StatusCode: ордер 200, штатный отказ 422, отказ биржи 502,
// сбой оракула 503, истёк таймаут 504.
func StatusCode(out runner.Outcome) int {
	switch out.Kind {
	case runner.OutcomeOrderPlaced:
		return http.StatusOK
	case runner.OutcomeRejected:
		if out.Reason == runner.ReasonExchangeRejected {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	case runner.OutcomeOracleFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusGatewayTimeout
	}
}

func toResponse(out runner.Outcome) Response {
	resp := Response{
		Status:  string(out.Kind),
		Symbol:  out.Symbol,
		Action:  out.Action,
		Side:    string(out.Side),
		OrderID: out.OrderID,
		Reason:  string(out.Reason),
		Oracle:  string(out.Oracle),
	}
	if out.Side != "" {
		resp.Qty = out.Qty.String()
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return resp
}

func (h *Handler) write(w http.ResponseWriter, status int, resp Response) {
	body, err := sonic.Marshal(resp)
	if err != nil {
		h.log.Error("[WEBHOOK] encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
