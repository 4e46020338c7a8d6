package session

import (
	"testing"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
)

// fakeClock is a manually advanced clock so durations are deterministic.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Tick(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestAdvanceBuildsHistory(t *testing.T) {
	tracker := NewPageTracker()

	if tracker.CurrentPage() != 1 {
		t.Fatalf("fresh tracker should start at page 1, got %d", tracker.CurrentPage())
	}

	urls := []string{
		"https://x.com/list?page=2",
		"https://x.com/list?page=3",
		"https://x.com/list?page=4",
	}
	for _, u := range urls {
		tracker.Advance(u)
	}

	if got := tracker.CurrentPage(); got != 1+len(urls) {
		t.Fatalf("expected page %d after %d advances, got %d", 1+len(urls), len(urls), got)
	}
	history := tracker.History()
	if len(history) != len(urls) {
		t.Fatalf("expected %d history entries, got %d", len(urls), len(history))
	}
	for i, visit := range history {
		if visit.Page != i+2 {
			t.Errorf("history[%d].Page = %d, want %d", i, visit.Page, i+2)
		}
		if visit.URL != urls[i] {
			t.Errorf("history[%d].URL = %q, want %q", i, visit.URL, urls[i])
		}
		if visit.Timestamp.IsZero() {
			t.Errorf("history[%d] has no timestamp", i)
		}
	}
}

func TestDetectionOverridesCurrentPage(t *testing.T) {
	tracker := NewPageTracker()
	tracker.Advance("https://x.com/list?page=2")
	tracker.Advance("https://x.com/list?page=3")

	tracker.SetDetection(core.Detection{Type: "numbered", Confidence: 0.9, Page: 5})

	if got := tracker.CurrentPage(); got != 5 {
		t.Fatalf("detection page should be authoritative, got %d", got)
	}
}

func TestDetectionWithoutPageKeepsCounter(t *testing.T) {
	tracker := NewPageTracker()
	tracker.Advance("https://x.com/list?page=2")

	tracker.SetDetection(core.Detection{Type: "next-link", Confidence: 0.6})

	if got := tracker.CurrentPage(); got != 2 {
		t.Fatalf("detection without a page should not move the counter, got %d", got)
	}
}

func TestDuration(t *testing.T) {
	tracker := NewPageTracker()
	clock := newFakeClock()
	tracker.now = clock.Now

	if tracker.Duration() != 0 {
		t.Fatal("duration before start should be 0")
	}

	tracker.Start()
	clock.Tick(5 * time.Second)
	tracker.End()

	if got := tracker.Duration(); got != 5*time.Second {
		t.Fatalf("expected 5s duration, got %s", got)
	}
}

func TestDurationWhileRunning(t *testing.T) {
	tracker := NewPageTracker()
	clock := newFakeClock()
	tracker.now = clock.Now

	tracker.Start()
	clock.Tick(10 * time.Second)

	if got := tracker.Duration(); got != 10*time.Second {
		t.Fatalf("expected 10s duration while running, got %s", got)
	}
}

func TestReset_RestoresInitialState(t *testing.T) {
	tracker := NewPageTracker()
	tracker.Start()
	tracker.SetDetection(core.Detection{Type: "numbered", Confidence: 0.9, Page: 7})
	tracker.Advance("https://x.com/list?page=8")
	tracker.End()

	tracker.Reset()

	if tracker.CurrentPage() != 1 {
		t.Errorf("expected page 1 after reset, got %d", tracker.CurrentPage())
	}
	if len(tracker.History()) != 0 {
		t.Errorf("expected empty history after reset, got %d entries", len(tracker.History()))
	}
	if tracker.Duration() != 0 {
		t.Errorf("expected zero duration after reset, got %s", tracker.Duration())
	}
	summary := tracker.Summary()
	if summary.LastDetection != nil {
		t.Errorf("expected no detection after reset, got %+v", summary.LastDetection)
	}
}

func TestSummary(t *testing.T) {
	tracker := NewPageTracker()
	clock := newFakeClock()
	tracker.now = clock.Now

	tracker.Start()
	tracker.Advance("https://x.com/list?page=2")
	clock.Tick(2 * time.Second)
	tracker.Advance("https://x.com/list?page=3")
	tracker.SetDetection(core.Detection{Type: "numbered", Confidence: 0.85, Page: 3})
	tracker.End()

	summary := tracker.Summary()
	if summary.CurrentPage != 3 {
		t.Errorf("summary.CurrentPage = %d, want 3", summary.CurrentPage)
	}
	if summary.PagesVisited != 2 {
		t.Errorf("summary.PagesVisited = %d, want 2", summary.PagesVisited)
	}
	if summary.Duration <= 0 {
		t.Errorf("summary.Duration = %s, want > 0", summary.Duration)
	}
	if summary.LastDetection == nil {
		t.Fatal("summary should carry the last detection")
	}
	if summary.LastDetection.Type != "numbered" || summary.LastDetection.Confidence != 0.85 {
		t.Errorf("unexpected detection summary: %+v", summary.LastDetection)
	}
}

func TestMutatorsValidBeforeStart(t *testing.T) {
	tracker := NewPageTracker()

	// The tracker is permissive: advancing and detecting outside the
	// start/end window must not fail or corrupt state.
	tracker.SetDetection(core.Detection{Type: "none", Confidence: 0})
	tracker.Advance("https://x.com/list?page=2")
	tracker.End()

	if tracker.Duration() != 0 {
		t.Fatalf("duration without start should be 0, got %s", tracker.Duration())
	}
	if tracker.CurrentPage() != 2 {
		t.Fatalf("expected page 2, got %d", tracker.CurrentPage())
	}
}
