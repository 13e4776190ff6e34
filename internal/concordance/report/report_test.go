package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/index"
	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
)

func buildIndex(t *testing.T, records map[string][]int) *index.Index {
	t.Helper()
	x := index.New(config.ConcordanceConfig{
		MaxWordLength:       config.DefaultMaxWordLength,
		MaxLineSummaryBytes: config.DefaultMaxLineSummaryBytes,
	})
	for word, lines := range records {
		for _, l := range lines {
			x.Record(word, l)
		}
	}
	return x
}

func TestRender_SortsByteWise(t *testing.T) {
	x := buildIndex(t, map[string][]int{
		"zebra":  {3},
		"apple":  {1, 2},
		"Banana": {4},
		"'tis":   {5},
		"apples": {6},
	})

	rows := Render(x.Entries())

	var words []string
	for _, r := range rows {
		words = append(words, r.Word)
	}
	// '\'' < 'B' < 'a' in byte order.
	assert.Equal(t, []string{"'tis", "Banana", "apple", "apples", "zebra"}, words)
	assert.Equal(t, []int{1, 2}, rows[2].Lines)
}

func TestRender_Empty(t *testing.T) {
	rows := Render(nil)
	assert.Empty(t, rows)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))
	assert.Empty(t, buf.String())
}

func TestWrite_Format(t *testing.T) {
	x := buildIndex(t, map[string][]int{
		"cat": {1, 2},
		"dog": {2},
		"sat": {1, 2},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Render(x.Entries())))
	assert.Equal(t, "cat 1 2\ndog 2\nsat 1 2\n", buf.String())
}

func TestRow_String(t *testing.T) {
	assert.Equal(t, "word 1 10 100", Row{Word: "word", Lines: []int{1, 10, 100}}.String())
	assert.Equal(t, "lonely", Row{Word: "lonely"}.String())
}

func TestRender_CarriesTruncation(t *testing.T) {
	x := index.New(config.ConcordanceConfig{MaxWordLength: 45, MaxLineSummaryBytes: 2})
	x.Record("word", 1)
	x.Record("word", 2)

	rows := Render(x.Entries())
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Truncated)
	assert.Equal(t, "word 1", rows[0].String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesErrors(t *testing.T) {
	rows := []Row{{Word: "a", Lines: []int{1}}}
	err := Write(failingWriter{}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
