package fallback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records how many times it was called.
type countingSource struct {
	name       string
	configured bool
	records    []string
	err        error
	calls      int
}

func (c *countingSource) Name() string     { return c.name }
func (c *countingSource) Configured() bool { return c.configured }

func (c *countingSource) FetchAll(context.Context) ([]string, error) {
	c.calls++
	return c.records, c.err
}

func newTestExecutor() *Executor[string] {
	return New[string](slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func staticTier() *countingSource {
	return &countingSource{name: "static", configured: true, records: []string{"kalkulator", "masjid"}}
}

func TestRun_RemoteFailureFallsBackToStatic(t *testing.T) {
	remote := &countingSource{name: "remote", configured: true, err: errors.New("permission denied")}
	static := staticTier()

	out := newTestExecutor().Run(context.Background(), remote, static)

	assert.Equal(t, []string{"kalkulator", "masjid"}, out.Records)
	assert.Equal(t, "static", out.Served)
	assert.Equal(t, 1, remote.calls)
	assert.True(t, out.Degraded())
	require.Len(t, out.Attempts, 2)
	assert.Error(t, out.Attempts[0].Err)
}

func TestRun_UnconfiguredSourceIsNeverCalled(t *testing.T) {
	remote := &countingSource{name: "remote", configured: false, records: []string{"should not appear"}}
	static := staticTier()

	out := newTestExecutor().Run(context.Background(), remote, static)

	assert.Equal(t, 0, remote.calls)
	assert.Equal(t, []string{"kalkulator", "masjid"}, out.Records)
	require.Len(t, out.Attempts, 2)
	assert.True(t, out.Attempts[0].Skipped)
}

func TestRun_FirstSuccessStopsChain(t *testing.T) {
	remote := &countingSource{name: "remote", configured: true, records: []string{"fresh"}}
	static := staticTier()

	out := newTestExecutor().Run(context.Background(), remote, static)

	assert.Equal(t, []string{"fresh"}, out.Records)
	assert.Equal(t, "remote", out.Served)
	assert.Equal(t, 0, static.calls)
	assert.False(t, out.Degraded())
}

func TestRun_EmptySuccessIsStillSuccess(t *testing.T) {
	remote := &countingSource{name: "remote", configured: true}
	static := staticTier()

	out := newTestExecutor().Run(context.Background(), remote, static)

	assert.True(t, out.OK())
	assert.NotNil(t, out.Records)
	assert.Empty(t, out.Records)
	assert.Equal(t, 0, static.calls)
}

func TestRun_AllFailReturnsEmpty(t *testing.T) {
	a := &countingSource{name: "a", configured: true, err: errors.New("boom")}
	b := &countingSource{name: "b", configured: false}

	out := newTestExecutor().Run(context.Background(), a, b)

	assert.False(t, out.OK())
	assert.NotNil(t, out.Records)
	assert.Empty(t, out.Records)
	assert.True(t, out.Degraded())
}

func TestRun_NoSources(t *testing.T) {
	out := newTestExecutor().Run(context.Background())

	assert.NotNil(t, out.Records)
	assert.False(t, out.OK())
	assert.False(t, out.Degraded())
}

func TestRun_CancelledContextStopsBeforeCalling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	remote := &countingSource{name: "remote", configured: true, records: []string{"x"}}
	out := newTestExecutor().Run(ctx, remote)

	assert.Equal(t, 0, remote.calls)
	assert.Empty(t, out.Records)
	require.Len(t, out.Attempts, 1)
	assert.ErrorIs(t, out.Attempts[0].Err, context.Canceled)
}

func TestFromFunc(t *testing.T) {
	src := FromFunc("fn", func(context.Context) ([]int, error) { return []int{1, 2}, nil })

	assert.True(t, src.Configured())
	assert.Equal(t, "fn", src.Name())

	out := New[int](slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background(), src)
	assert.Equal(t, []int{1, 2}, out.Records)

	var nilFetch FuncSource[int]
	nilFetch.Ready = true
	assert.False(t, nilFetch.Configured())
}
