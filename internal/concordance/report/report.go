// Package report orders concordance entries and renders them as
// "word 1 5 12" lines.
package report

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/index"
)

// Row is one line of the final listing.
type Row struct {
	Word      string
	Lines     []int
	Truncated bool

	entry *index.Entry
}

// AppendTo appends the rendered row, without a newline, to dst.
func (r Row) AppendTo(dst []byte) []byte {
	dst = append(dst, r.Word...)
	if r.entry != nil {
		return r.entry.AppendSummary(dst)
	}
	return (&index.Entry{Lines: r.Lines}).AppendSummary(dst)
}

func (r Row) String() string {
	return string(r.AppendTo(nil))
}

// Render sorts entries by word, comparing bytes rather than collating, and
// returns one Row per entry. Words are unique so no tie-break is needed.
func Render(entries []*index.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Word:      e.Word,
			Lines:     e.Lines,
			Truncated: e.Truncated,
			entry:     e,
		})
	}
	slices.SortFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Word, b.Word)
	})
	return rows
}

// Write renders rows to w, one per line.
func Write(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, r := range rows {
		buf = r.AppendTo(buf[:0])
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("writing row %q: %w", r.Word, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}
