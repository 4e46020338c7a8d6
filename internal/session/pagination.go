package session

import (
	"sync"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
)

// PageTracker records where a traversal is in a paginated listing: the
// current page number, the most recent detection, the session boundary
// timestamps and a history entry for every advance.
//
// All mutators are valid in any state; Start/End only matter to Duration.
// This is deliberately permissive so the driver stays simple.
type PageTracker struct {
	mu        sync.Mutex
	current   int
	detection *core.Detection
	history   []core.PageVisit
	startedAt time.Time
	endedAt   time.Time

	now func() time.Time
}

func NewPageTracker() *PageTracker {
	return &PageTracker{current: 1, now: time.Now}
}

// SetDetection stores the latest page-type detection. A detection that
// carries a page number overwrites the current page immediately: detection is
// authoritative over accumulated increments.
func (t *PageTracker) SetDetection(d core.Detection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if d.DetectedAt.IsZero() {
		d.DetectedAt = t.now().UTC()
	}
	t.detection = &d
	if d.Page > 0 {
		t.current = d.Page
	}
}

// Advance increments the current page and appends a history entry for the
// navigated URL. It returns the new page number.
func (t *PageTracker) Advance(pageURL string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current++
	t.history = append(t.history, core.PageVisit{
		Page:      t.current,
		URL:       pageURL,
		Timestamp: t.now().UTC(),
	})
	return t.current
}

// Start records the session start timestamp.
func (t *PageTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = t.now().UTC()
}

// End records the session end timestamp.
func (t *PageTracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endedAt = t.now().UTC()
}

// Duration returns the elapsed time from Start to End, or to now while the
// session is still running. A tracker that was never started reports 0.
func (t *PageTracker) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startedAt.IsZero() {
		return 0
	}
	if !t.endedAt.IsZero() {
		return t.endedAt.Sub(t.startedAt)
	}
	return t.now().UTC().Sub(t.startedAt)
}

// Reset restores the tracker to its initial state: page 1, empty history, no
// detection, no timestamps.
func (t *PageTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = 1
	t.detection = nil
	t.history = nil
	t.startedAt = time.Time{}
	t.endedAt = time.Time{}
}

func (t *PageTracker) CurrentPage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// History returns a copy of the recorded page transitions, in order.
func (t *PageTracker) History() []core.PageVisit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]core.PageVisit, len(t.history))
	copy(out, t.history)
	return out
}

// Summary returns the reporting view of the tracker: current page, number of
// recorded transitions, duration, and the type and confidence of the last
// detection if one was set.
func (t *PageTracker) Summary() core.SessionSummary {
	duration := t.Duration()

	t.mu.Lock()
	defer t.mu.Unlock()

	summary := core.SessionSummary{
		CurrentPage:  t.current,
		PagesVisited: len(t.history),
		Duration:     duration,
	}
	if t.detection != nil {
		summary.LastDetection = &core.DetectionSummary{
			Type:       t.detection.Type,
			Confidence: t.detection.Confidence,
		}
	}
	return summary
}
