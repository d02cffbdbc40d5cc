package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWarmer struct {
	loaded int
	got    []string
}

func (f *fakeWarmer) Warm(_ context.Context, symbols []string) int {
	f.got = symbols
	return f.loaded
}

type flag struct{ ready bool }

func (f *flag) SetReady(v bool) { f.ready = v }

func TestWarmupMarksReady(t *testing.T) {
	fw := &fakeWarmer{loaded: 2}
	st := &flag{}

	NewWarmuper(fw, st, zap.NewNop()).Warmup(context.Background(), []string{"ETHUSDT", "BTCUSDT"})

	assert.True(t, st.ready)
	assert.Equal(t, []string{"ETHUSDT", "BTCUSDT"}, fw.got)
}

func TestWarmupPartialIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st := &flag{}

	NewWarmuper(&fakeWarmer{loaded: 1}, st, zap.New(core)).Warmup(context.Background(), []string{"ETHUSDT", "XYZUSDT"})

	assert.True(t, st.ready)
	assert.Equal(t, 1, logs.FilterMessage("[BOOT] warmup incomplete").Len())
}

func TestWarmupCanceledStaysNotReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := &flag{}

	NewWarmuper(&fakeWarmer{}, st, zap.NewNop()).Warmup(ctx, []string{"ETHUSDT"})

	assert.False(t, st.ready)
}
