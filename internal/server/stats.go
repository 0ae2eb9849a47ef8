package server

import (
	"sort"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// Stats are lock-free server counters. They are updated from connection
// goroutines without touching any connection state.
type Stats struct {
	accepted *xsync.Counter
	rejected *xsync.Counter
	requests *xsync.Counter
	bytes    *xsync.Counter
	statuses *xsync.MapOf[int, *xsync.Counter]
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{
		accepted: xsync.NewCounter(),
		rejected: xsync.NewCounter(),
		requests: xsync.NewCounter(),
		bytes:    xsync.NewCounter(),
		statuses: xsync.NewMapOf[int, *xsync.Counter](),
	}
}

func (s *Stats) record(status int, written int64) {
	s.requests.Inc()
	s.bytes.Add(written)
	c, _ := s.statuses.LoadOrCompute(status, xsync.NewCounter)
	c.Inc()
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Accepted int64
	Rejected int64
	Requests int64
	Bytes    int64
	Statuses map[int]int64 // responses sent, by status code
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Accepted: s.accepted.Value(),
		Rejected: s.rejected.Value(),
		Requests: s.requests.Value(),
		Bytes:    s.bytes.Value(),
		Statuses: make(map[int]int64, s.statuses.Size()),
	}
	s.statuses.Range(func(code int, c *xsync.Counter) bool {
		snap.Statuses[code] = c.Value()
		return true
	})
	return snap
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (snap Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("accepted", snap.Accepted).
		Int64("rejected", snap.Rejected).
		Int64("requests", snap.Requests).
		Int64("bytes", snap.Bytes)

	codes := make([]int, 0, len(snap.Statuses))
	for code := range snap.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	statuses := zerolog.Dict()
	for _, code := range codes {
		statuses.Int64(strconv.Itoa(code), snap.Statuses[code])
	}
	e.Dict("statuses", statuses)
}
