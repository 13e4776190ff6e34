package sink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/metrics"
)

var sampleRows = []report.Row{
	{Word: "cat", Lines: []int{1, 2}},
	{Word: "dog", Lines: []int{2}},
}

type memSink struct {
	name string
	err  error
	mu   sync.Mutex
	got  []report.Row
	// block waits for ctx cancellation before returning.
	block bool
}

func (m *memSink) Name() string { return m.name }

func (m *memSink) Write(ctx context.Context, rows []report.Row) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = rows
	return m.err
}

func TestDeliver_AllSinksGetRows(t *testing.T) {
	a := &memSink{name: "a"}
	b := &memSink{name: "b"}
	m := metrics.New()

	require.NoError(t, Deliver(context.Background(), []Sink{a, b}, sampleRows, m))
	assert.Equal(t, sampleRows, a.got)
	assert.Equal(t, sampleRows, b.got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("a", "ok")))
}

func TestDeliver_FailureCancelsOthers(t *testing.T) {
	bad := &memSink{name: "bad", err: errors.New("refused")}
	slow := &memSink{name: "slow", block: true}
	m := metrics.New()

	err := Deliver(context.Background(), []Sink{bad, slow}, sampleRows, m)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSinkWrite)
	assert.Contains(t, err.Error(), "refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("bad", "error")))
}

func TestDeliver_NoSinks(t *testing.T) {
	assert.NoError(t, Deliver(context.Background(), nil, sampleRows, nil))
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream("stdout", &buf)
	assert.Equal(t, "stdout", s.Name())
	require.NoError(t, s.Write(context.Background(), sampleRows))
	assert.Equal(t, "cat 1 2\ndog 2\n", buf.String())
}

func TestFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	require.NoError(t, NewFile(path).Write(context.Background(), sampleRows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cat 1 2\ndog 2\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestFile_MissingDir(t *testing.T) {
	err := NewFile(filepath.Join(t.TempDir(), "nope", "out.txt")).Write(context.Background(), sampleRows)
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	s := WithTimeout(&memSink{name: "slow", block: true}, 10*time.Millisecond)
	assert.Equal(t, "slow", s.Name())
	err := s.Write(context.Background(), sampleRows)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	plain := &memSink{name: "plain"}
	assert.Same(t, Sink(plain), WithTimeout(plain, 0))
}

func TestBuild_LocalSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Sinks = []string{config.SinkStdout, config.SinkFile}
	cfg.Output.File = filepath.Join(t.TempDir(), "out.txt")

	var buf bytes.Buffer
	sinks, closeFn, err := Build(cfg, &buf)
	require.NoError(t, err)
	defer closeFn()
	require.Len(t, sinks, 2)
	assert.Equal(t, "stdout", sinks[0].Name())
	assert.Equal(t, "file", sinks[1].Name())
}

func TestBuild_UnreachableRedis(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Sinks = []string{config.SinkRedis}
	cfg.Redis.Addr = "127.0.0.1:1"

	_, closeFn, err := Build(cfg, nil)
	require.Error(t, err)
	assert.NoError(t, closeFn())
}
