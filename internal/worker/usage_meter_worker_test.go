package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(ctx context.Context, sessionID uint, delta int64) error

func (f recorderFunc) AddTokenUsage(ctx context.Context, sessionID uint, delta int64) error {
	return f(ctx, sessionID, delta)
}

func TestUsageMeterWorker_Handle(t *testing.T) {
	var gotSession uint
	var gotDelta int64
	w := NewUsageMeterWorker(nil, recorderFunc(func(_ context.Context, id uint, delta int64) error {
		gotSession, gotDelta = id, delta
		return nil
	}), "usage", nil)

	err := w.handle(context.Background(), []byte(`{"session_id":7,"model":"m","prompt_tokens":100,"completion_tokens":25}`))
	require.NoError(t, err)
	assert.Equal(t, uint(7), gotSession)
	assert.Equal(t, int64(125), gotDelta)
}

func TestUsageMeterWorker_RejectsBadEvents(t *testing.T) {
	calls := 0
	w := NewUsageMeterWorker(nil, recorderFunc(func(context.Context, uint, int64) error {
		calls++
		return nil
	}), "usage", nil)

	assert.Error(t, w.handle(context.Background(), []byte(`not json`)))
	assert.ErrorIs(t, w.handle(context.Background(), []byte(`{"session_id":0,"prompt_tokens":5}`)), errEmptyUsage)
	assert.ErrorIs(t, w.handle(context.Background(), []byte(`{"session_id":3}`)), errEmptyUsage)
	assert.Zero(t, calls)
}

func TestUsageMeterWorker_PropagatesRecorderError(t *testing.T) {
	boom := errors.New("db down")
	w := NewUsageMeterWorker(nil, recorderFunc(func(context.Context, uint, int64) error { return boom }), "usage", nil)

	assert.ErrorIs(t, w.handle(context.Background(), []byte(`{"session_id":1,"prompt_tokens":1}`)), boom)
}
