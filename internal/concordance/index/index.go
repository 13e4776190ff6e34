// Package index holds the in-memory concordance: for every distinct word, the
// sorted set of line numbers it occurs on.
//
// Entries are placed into buckets by a 64-bit hash of the word, but a bucket
// hit only counts as the same entry when the stored word equals the token
// byte for byte. Two words whose hashes collide therefore always get separate
// entries, and an entry's spelling never changes after it is created.
//
// Each entry's line list is bounded by the size of its rendered summary
// (" 1 5 12 ..."). Once the next line number would push the summary past
// MaxLineSummaryBytes the entry is marked truncated and stops growing. Words
// longer than MaxWordLength are dropped without creating an entry. Neither
// case is an error; both are visible through the returned Outcome and Stats.
package index

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
)

const initialBuckets = 64

// Outcome describes what Record did with a token.
type Outcome int

const (
	// Created means a new entry was made for the word and the line added.
	Created Outcome = iota
	// Added means the line was added to an existing entry.
	Added
	// Duplicate means the entry already lists the line.
	Duplicate
	// Truncated means the line was dropped because the summary budget is spent.
	Truncated
	// Rejected means the word was empty or too long, or the line number was
	// not positive. Nothing was stored.
	Rejected
	// OverCapacity means the word is new but the index already holds
	// MaxEntries words. Nothing was stored.
	OverCapacity
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Truncated:
		return "truncated"
	case Rejected:
		return "rejected"
	case OverCapacity:
		return "over_capacity"
	default:
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

// Entry is the record for one distinct word.
type Entry struct {
	Word string
	// Lines is ascending and free of duplicates.
	Lines []int
	// Truncated is set once a line was dropped for lack of summary budget.
	Truncated bool

	hash         uint64
	summaryBytes int
}

// SummaryBytes is the length of the rendered line summary.
func (e *Entry) SummaryBytes() int {
	return e.summaryBytes
}

// AppendSummary appends " n" for every line number of e to dst.
func (e *Entry) AppendSummary(dst []byte) []byte {
	for _, n := range e.Lines {
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(n), 10)
	}
	return dst
}

// Stats counts what the index has seen so far.
type Stats struct {
	Entries          int
	Rejected         int64
	Duplicates       int64
	TruncatedEntries int
	DroppedLines     int64
	OverCapacity     int64
}

// Option customises an Index.
type Option func(*Index)

// WithHash replaces the bucket hash. Tests use it to force collisions.
func WithHash(fn func(string) uint64) Option {
	return func(x *Index) {
		x.hash = fn
	}
}

// Index is not safe for concurrent use; the driver owns it exclusively.
type Index struct {
	maxWordLength int
	maxSummary    int
	maxEntries    int
	hash          func(string) uint64

	buckets [][]*Entry
	entries []*Entry
	stats   Stats
}

// New returns an empty index bounded by cfg.
func New(cfg config.ConcordanceConfig, opts ...Option) *Index {
	x := &Index{
		maxWordLength: cfg.MaxWordLength,
		maxSummary:    cfg.MaxLineSummaryBytes,
		maxEntries:    cfg.MaxEntries,
		hash:          xxhash.Sum64String,
		buckets:       make([][]*Entry, initialBuckets),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Record notes that word occurs on line.
func (x *Index) Record(word string, line int) Outcome {
	if word == "" || len(word) > x.maxWordLength || line < 1 {
		x.stats.Rejected++
		return Rejected
	}
	h := x.hash(word)
	e := x.lookup(h, word)
	if e == nil {
		if x.maxEntries > 0 && len(x.entries) >= x.maxEntries {
			x.stats.OverCapacity++
			return OverCapacity
		}
		e = x.insert(h, word)
		if out := x.addLine(e, line); out != Added {
			return out
		}
		return Created
	}
	return x.addLine(e, line)
}

// Lookup returns the entry for word, if any.
func (x *Index) Lookup(word string) (*Entry, bool) {
	e := x.lookup(x.hash(word), word)
	return e, e != nil
}

// Entries returns every entry in creation order. The entries are shared with
// the index and must not be modified.
func (x *Index) Entries() []*Entry {
	return slices.Clone(x.entries)
}

// Len is the number of distinct words held.
func (x *Index) Len() int {
	return len(x.entries)
}

func (x *Index) Stats() Stats {
	s := x.stats
	s.Entries = len(x.entries)
	return s
}

func (x *Index) lookup(h uint64, word string) *Entry {
	for _, e := range x.buckets[h&uint64(len(x.buckets)-1)] {
		if e.hash == h && e.Word == word {
			return e
		}
	}
	return nil
}

func (x *Index) insert(h uint64, word string) *Entry {
	if len(x.entries) >= len(x.buckets) {
		x.grow()
	}
	// Tokens may be slices of a much longer input line.
	e := &Entry{Word: strings.Clone(word), hash: h}
	b := h & uint64(len(x.buckets)-1)
	x.buckets[b] = append(x.buckets[b], e)
	x.entries = append(x.entries, e)
	return e
}

func (x *Index) grow() {
	buckets := make([][]*Entry, len(x.buckets)*2)
	mask := uint64(len(buckets) - 1)
	for _, e := range x.entries {
		b := e.hash & mask
		buckets[b] = append(buckets[b], e)
	}
	x.buckets = buckets
}

func (x *Index) addLine(e *Entry, line int) Outcome {
	pos, found := len(e.Lines), false
	if pos > 0 && e.Lines[pos-1] >= line {
		pos, found = slices.BinarySearch(e.Lines, line)
	}
	if found {
		x.stats.Duplicates++
		return Duplicate
	}
	cost := 1 + digits(line)
	if e.Truncated || e.summaryBytes+cost > x.maxSummary {
		if !e.Truncated {
			e.Truncated = true
			x.stats.TruncatedEntries++
		}
		x.stats.DroppedLines++
		return Truncated
	}
	e.Lines = slices.Insert(e.Lines, pos, line)
	e.summaryBytes += cost
	return Added
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
