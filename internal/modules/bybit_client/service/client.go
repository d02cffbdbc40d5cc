package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	categoryLinear = "linear"

	headerAPIKey     = "X-BAPI-API-KEY"
	headerSign       = "X-BAPI-SIGN"
	headerTimestamp  = "X-BAPI-TIMESTAMP"
	headerRecvWindow = "X-BAPI-RECV-WINDOW"
)

type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	RecvWindow  int
	AccountType string
	Timeout     time.Duration
}

// Client — REST-клиент Bybit v5 (linear USDT perpetual, one-way режим).
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	apiSecret   string
	recvWindow  string
	accountType string

	now   func() time.Time
	newID func() string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	recv := cfg.RecvWindow
	if recv <= 0 {
		recv = 5000
	}
	accountType := cfg.AccountType
	if accountType == "" {
		accountType = "UNIFIED"
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		recvWindow:  strconv.Itoa(recv),
		accountType: accountType,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// APIError — ответ биржи с retCode != 0.
type APIError struct {
	Code int
	Msg  string
}

// RejectedByVenue: retCode != 0 — биржа ответила и отказала.
func (e *APIError) RejectedByVenue() bool { return true }

func (e *APIError) Error() string {
	return fmt.Sprintf("bybit error: retCode=%d retMsg=%s", e.Code, e.Msg)
}

type envelope[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
}

// sign: hex(HMAC_SHA256(secret, ts + key + recvWindow + payload)).
func (c *Client) sign(ts, payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + c.apiKey + c.recvWindow + payload))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) get(ctx context.Context, path string, query url.Values, private bool, out any) error {
	qs := query.Encode()
	u := c.baseURL + path
	if qs != "" {
		u += "?" + qs
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "%s new request", path)
	}
	if private {
		c.authorize(req, qs)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := sonic.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "%s marshal", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "%s new request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, string(payload))
	return c.do(req, path, out)
}

func (c *Client) authorize(req *http.Request, payload string) {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerTimestamp, ts)
	req.Header.Set(headerRecvWindow, c.recvWindow)
	req.Header.Set(headerSign, c.sign(ts, payload))
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s do", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s read body", path)
	}
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("%s http %d: %s", path, resp.StatusCode, string(data))
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "%s decode; body=%s", path, string(data))
	}
	return nil
}

func checkRet(code int, msg string) error {
	if code != 0 {
		return &APIError{Code: code, Msg: msg}
	}
	return nil
}
