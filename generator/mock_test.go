package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockScriptOrder(t *testing.T) {
	m := NewMock()
	m.Enqueue("first")
	m.EnqueueError(NewError(KindRateLimit, "throttled", nil))
	m.Enqueue("second")

	ctx := context.Background()

	resp, err := m.Generate(ctx, "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "first", resp)

	_, err = m.Generate(ctx, "sys", "user")
	assert.True(t, IsRateLimit(err))

	resp, err = m.Generate(ctx, "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "second", resp)

	// Exhausted script falls back.
	resp, err = m.Generate(ctx, "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "This is a mock response", resp)

	assert.Equal(t, 4, m.Calls())
}

func TestMockContextCancellation(t *testing.T) {
	m := NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, "sys", "user")
	assert.True(t, IsTimeout(err))
}

func TestErrorKindPredicates(t *testing.T) {
	rateLimit := NewError(KindRateLimit, "throttled", nil)
	wrapped := errors.Join(errors.New("outer"), rateLimit)

	assert.True(t, IsRateLimit(rateLimit))
	assert.True(t, IsRateLimit(wrapped))
	assert.False(t, IsRateLimit(errors.New("plain")))
	assert.False(t, IsTimeout(rateLimit))

	timeout := NewError(KindTimeout, "deadline", context.DeadlineExceeded)
	assert.True(t, IsTimeout(timeout))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
}

func TestErrorStrings(t *testing.T) {
	err := NewError(KindRateLimit, "throttled", errors.New("429"))
	assert.Contains(t, err.Error(), "RateLimitError")
	assert.Contains(t, err.Error(), "429")

	bare := NewError(KindOther, "boom", nil)
	assert.Equal(t, "GenerationError: boom", bare.Error())
}
