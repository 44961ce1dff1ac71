package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// String returns the label used in logs and the admin snapshot.
func (k EntryKind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "request"
}

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, "VERB table" for queries
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes are non-blocking; when full, oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the total number of entries ever recorded.
// PRE: none
// POST: returns count >= 0
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot holds aggregated performance data for one window.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"totalRecorded"`
	Requests       int        `json:"requests"`
	Queries        int        `json:"queries"`
	ServerErrors   int        `json:"serverErrors"`
	RequestP50Ms   float64    `json:"requestP50Ms"`
	RequestP95Ms   float64    `json:"requestP95Ms"`
	RequestP99Ms   float64    `json:"requestP99Ms"`
	QueryP95Ms     float64    `json:"queryP95Ms"`
	SlowestPaths   []PathStat `json:"slowestPaths"`
	SlowestQueries []PathStat `json:"slowestQueries"`
}

// PathStat aggregates timing for a single route or query label.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"totalMs"`
}

// window accumulates durations and per-path stats for one entry kind.
type window struct {
	durations []float64
	paths     map[string]*PathStat
}

func newWindow() *window {
	return &window{paths: make(map[string]*PathStat)}
}

func (w *window) add(e Entry) {
	w.durations = append(w.durations, e.DurationMs)
	s, ok := w.paths[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		w.paths[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// Snapshot computes aggregated stats from entries recorded at or after since.
// It copies and sorts the buffer; call it from the admin endpoint, not per request.
// PRE: topN >= 0
// POST: Returns a Snapshot with percentiles and top-N lists, both lists non-nil
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	requests, queries := newWindow(), newWindow()
	serverErrors := 0
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requests.add(e)
			if e.StatusCode >= 500 {
				serverErrors++
			}
		case KindQuery:
			queries.add(e)
		}
	}

	snap := Snapshot{
		Since:          since,
		TotalRecorded:  c.TotalRecorded(),
		Requests:       len(requests.durations),
		Queries:        len(queries.durations),
		ServerErrors:   serverErrors,
		SlowestPaths:   topByAvg(requests.paths, topN),
		SlowestQueries: topByAvg(queries.paths, topN),
	}

	if len(requests.durations) > 0 {
		sort.Float64s(requests.durations)
		snap.RequestP50Ms = percentile(requests.durations, 50)
		snap.RequestP95Ms = percentile(requests.durations, 95)
		snap.RequestP99Ms = percentile(requests.durations, 99)
	}
	if len(queries.durations) > 0 {
		sort.Float64s(queries.durations)
		snap.QueryP95Ms = percentile(queries.durations, 95)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N paths sorted by average duration (descending).
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
