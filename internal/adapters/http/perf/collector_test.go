package perf

import (
	"testing"
	"time"
)

// TestRecordAndSnapshot tests basic record/aggregate flow.
func TestRecordAndSnapshot(t *testing.T) {
	c := NewCollector(16)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "POST /api/register", StatusCode: 201, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "POST /api/register", StatusCode: 201, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /api/registration-count", StatusCode: 200, DurationMs: 2, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "QueryContext", DurationMs: 5, Timestamp: now})

	if c.TotalRecorded() != 4 {
		t.Errorf("TotalRecorded() = %d, want 4", c.TotalRecorded())
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", snap.TotalRequests)
	}
	if len(snap.SlowestPaths) != 2 {
		t.Fatalf("SlowestPaths = %v, want 2 paths", snap.SlowestPaths)
	}
	if snap.SlowestPaths[0].Path != "POST /api/register" {
		t.Errorf("slowest path = %q, want register", snap.SlowestPaths[0].Path)
	}
	if snap.SlowestPaths[0].AvgMs != 20 {
		t.Errorf("register AvgMs = %v, want 20", snap.SlowestPaths[0].AvgMs)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Path != "QueryContext" {
		t.Errorf("SlowestQueries = %v, want one QueryContext entry", snap.SlowestQueries)
	}
}

// TestSnapshotSinceFilter tests that old entries are excluded.
func TestSnapshotSinceFilter(t *testing.T) {
	c := NewCollector(16)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 1, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if snap.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", snap.TotalRequests)
	}
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("SlowestPaths = %v, want only GET /new", snap.SlowestPaths)
	}
}

// TestRingBufferOverwrite tests that the buffer overwrites oldest entries when full.
func TestRingBufferOverwrite(t *testing.T) {
	c := NewCollector(2)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /a", DurationMs: 1, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /b", DurationMs: 1, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /c", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2 (oldest overwritten)", snap.TotalRequests)
	}
	for _, p := range snap.SlowestPaths {
		if p.Path == "GET /a" {
			t.Error("oldest entry GET /a should have been overwritten")
		}
	}
	if c.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded() = %d, want 3", c.TotalRecorded())
	}
}

// TestPercentile tests percentile math on a known distribution.
func TestPercentile(t *testing.T) {
	durations := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(durations, 0.50); got != 5 {
		t.Errorf("p50 = %v, want 5", got)
	}
	if got := percentile(durations, 0.99); got != 9 {
		t.Errorf("p99 = %v, want 9", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("p50 of empty = %v, want 0", got)
	}
}
