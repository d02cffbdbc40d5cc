package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signal_trader/internal/models"
	"signal_trader/internal/runner"
)

type fakeEngine struct {
	mu   sync.Mutex
	got  []models.Signal
	out  runner.Outcome
	ctxE error
}

func (f *fakeEngine) HandleSignal(ctx context.Context, sig models.Signal) runner.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, sig)
	f.ctxE = ctx.Err()
	out := f.out
	out.Symbol, out.Action = sig.Symbol, sig.Action
	return out
}

type fakeNotifier struct {
	mu  sync.Mutex
	got []runner.Outcome
}

func (f *fakeNotifier) Notify(_ context.Context, out runner.Outcome) {
	f.mu.Lock()
	f.got = append(f.got, out)
	f.mu.Unlock()
}

func newTestHandler(out runner.Outcome, secret string) (*Handler, *fakeEngine, *fakeNotifier) {
	eng := &fakeEngine{out: out}
	n := &fakeNotifier{}
	syn, _ := LoadSynonyms("")
	h := NewHandler(eng, n, syn, Config{Secret: secret, DefaultSymbol: "ETHUSDT"}, zap.NewNop())
	return h, eng, n
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWebhookPlacedOrder(t *testing.T) {
	h, eng, n := newTestHandler(runner.Outcome{
		Kind:    runner.OutcomeOrderPlaced,
		Side:    models.OrderBuy,
		Qty:     decimal.RequireFromString("10"),
		OrderID: "ord-1",
	}, "")

	rec := post(h, `{"action":"buy","symbol":"ethusdt"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "order_placed", resp.Status)
	assert.Equal(t, "Buy", resp.Side)
	assert.Equal(t, "10", resp.Qty)
	assert.Equal(t, "ord-1", resp.OrderID)

	require.Len(t, eng.got, 1)
	assert.Equal(t, models.Signal{Action: "BUY", Symbol: "ETHUSDT"}, eng.got[0])
	assert.NoError(t, eng.ctxE)
	assert.Len(t, n.got, 1)
}

func TestWebhookDefaultSymbolAndSynonym(t *testing.T) {
	h, eng, _ := newTestHandler(runner.Outcome{Kind: runner.OutcomeOrderPlaced}, "")

	post(h, `{"action":"SHORT_AGAIN"}`)

	require.Len(t, eng.got, 1)
	assert.Equal(t, models.Signal{Action: "SELL_AGAIN", Symbol: "ETHUSDT"}, eng.got[0])
}

func TestWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		out  runner.Outcome
		code int
	}{
		{"rejected", runner.Outcome{Kind: runner.OutcomeRejected, Reason: runner.ReasonNoPosition}, http.StatusUnprocessableEntity},
		{"exchange rejected", runner.Outcome{Kind: runner.OutcomeRejected, Reason: runner.ReasonExchangeRejected, Err: errors.New("110007")}, http.StatusBadGateway},
		{"oracle failure", runner.Outcome{Kind: runner.OutcomeOracleFailure, Oracle: runner.OraclePrice}, http.StatusServiceUnavailable},
		{"dispatch unknown", runner.Outcome{Kind: runner.OutcomeOracleFailure, Oracle: runner.OracleDispatch, Err: errors.New("EOF")}, http.StatusServiceUnavailable},
		{"canceled", runner.Outcome{Kind: runner.OutcomeCanceled, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, n := newTestHandler(tt.out, "")
			rec := post(h, `{"action":"CLOSE_LONG"}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, string(tt.out.Kind), decode(t, rec).Status)
			assert.Len(t, n.got, 1)
		})
	}
}

func TestWebhookOracleFieldInResponse(t *testing.T) {
	h, _, _ := newTestHandler(runner.Outcome{Kind: runner.OutcomeOracleFailure, Oracle: runner.OracleAccount, Err: errors.New("401")}, "")

	resp := decode(t, post(h, `{"action":"BUY"}`))
	assert.Equal(t, "account", resp.Oracle)
	assert.Equal(t, "401", resp.Error)
	assert.Empty(t, resp.Qty)
}

func TestWebhookSecret(t *testing.T) {
	h, eng, n := newTestHandler(runner.Outcome{Kind: runner.OutcomeOrderPlaced}, "s3cret")

	rec := post(h, `{"action":"BUY","passphrase":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, eng.got)
	assert.Empty(t, n.got)

	rec = post(h, `{"action":"BUY","passphrase":"s3cret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookBadRequests(t *testing.T) {
	h, eng, _ := newTestHandler(runner.Outcome{Kind: runner.OutcomeOrderPlaced}, "")

	assert.Equal(t, http.StatusBadRequest, post(h, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"symbol":"ETHUSDT"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"action":"`+strings.Repeat("A", maxBodyBytes)+`"}`).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Empty(t, eng.got)
}

func TestWebhookClientDisconnectDoesNotCancel(t *testing.T) {
	h, eng, _ := newTestHandler(runner.Outcome{Kind: runner.OutcomeOrderPlaced}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"action":"BUY"}`)).WithContext(ctx)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, eng.got, 1)
	assert.NoError(t, eng.ctxE)
}
