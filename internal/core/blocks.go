package core

import (
	"time"
)

// PageBlock contains the data and metadata of a single fetched page as it
// moves through a walk: the raw document, everything extracted from it, and
// the detection outcome for the page.
type PageBlock struct {
	SessionID string      `json:"session_id" yaml:"session_id"`
	Page      int         `json:"page" yaml:"page"`
	URL       string      `json:"url" yaml:"url"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	HTML      string      `json:"-" yaml:"-"`
	Links     []string    `json:"links,omitempty" yaml:"links,omitempty"`
	Images    []ImageRef  `json:"images,omitempty" yaml:"images,omitempty"`
	NextURL   string      `json:"next_url,omitempty" yaml:"next_url,omitempty"`
	Detection *Detection  `json:"detection,omitempty" yaml:"detection,omitempty"`
	FetchedAt time.Time   `json:"fetched_at" yaml:"fetched_at"`
	Errors    []WalkError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ImageRef is an image discovered on a page, plus the local filename a
// download of it would be stored under.
type ImageRef struct {
	URL      string `json:"url" yaml:"url"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// Detection is the outcome of running page-type detection against a page.
// Page is the page number the detector extracted, or 0 when it could not
// tell; a zero Page never overrides the tracker's accumulated counter.
type Detection struct {
	Type       string    `json:"type" yaml:"type"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	Page       int       `json:"page,omitempty" yaml:"page,omitempty"`
	DetectedAt time.Time `json:"detected_at" yaml:"detected_at"`
}

// DetectionSummary is the reduced view of a detection carried in a session
// summary.
type DetectionSummary struct {
	Type       string  `json:"type" yaml:"type"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// PageVisit is one entry in a pagination tracker's history, recorded on every
// page advance.
type PageVisit struct {
	Page      int       `json:"page" yaml:"page"`
	URL       string    `json:"url" yaml:"url"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// SessionSummary is the reporting view of a single traversal: where the
// tracker ended up and how long it ran.
type SessionSummary struct {
	CurrentPage   int               `json:"current_page" yaml:"current_page"`
	PagesVisited  int               `json:"pages_visited" yaml:"pages_visited"`
	Duration      time.Duration     `json:"duration" yaml:"duration"`
	LastDetection *DetectionSummary `json:"last_detection,omitempty" yaml:"last_detection,omitempty"`
}

// Traversal is the walk of a single seed: the pages it collected and the
// tracker state it finished with.
type Traversal struct {
	SeedURL string          `json:"seed_url" yaml:"seed_url"`
	Pages   []*PageBlock    `json:"pages,omitempty" yaml:"pages,omitempty"`
	Visited []string        `json:"visited,omitempty" yaml:"visited,omitempty"`
	Summary *SessionSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// WalkError records a non-fatal failure that occurred while processing a walk.
type WalkError struct {
	Component  string    `json:"component" yaml:"component"`
	Stage      string    `json:"stage" yaml:"stage"`
	Error      string    `json:"error" yaml:"error"`
	OccurredAt time.Time `json:"occurred_at" yaml:"occurred_at"`
}
