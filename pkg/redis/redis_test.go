package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyConnectionURL)

	for _, url := range []string{
		"http://localhost:6379",
		"localhost:6379",
		"postgres://localhost:6379",
		"redis://localhost:notaport",
		"redis://localhost:6379/notanumber",
	} {
		t.Run(url, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, url)
			require.ErrorIs(t, err, ErrFailedToParseURL)
			assert.Nil(t, client)
		})
	}
}

func TestOpen_GivesUpWhenContextEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// Nothing listens on port 1.
	_, err := Open(ctx, "redis://127.0.0.1:1/0",
		WithRetry(5, time.Second),
		WithTimeouts(50*time.Millisecond, 50*time.Millisecond),
	)
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	assert.ErrorIs(t, err, ErrHealthcheckFailed)
}

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	c := &closer{err: errors.New("boom")}
	err := Shutdown(c)(context.Background())
	assert.True(t, c.closed)
	assert.EqualError(t, err, "boom")
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	WithPoolSize(20, 4)(o)
	WithRetry(1, time.Second)(o)
	WithTimeouts(time.Second, 2*time.Second)(o)

	assert.Equal(t, 20, o.poolSize)
	assert.Equal(t, 4, o.minIdleConns)
	assert.Equal(t, 1, o.retryAttempts)
	assert.Equal(t, time.Second, o.ioTimeout)
	assert.Equal(t, 2*time.Second, o.dialTimeout)
}

func TestWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wait(ctx, time.Hour), context.Canceled)
	assert.NoError(t, wait(context.Background(), time.Millisecond))
}
