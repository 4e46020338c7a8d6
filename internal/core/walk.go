package core

import (
	"context"
	"time"
)

// Walk represents the internal structure of a parsed walk document: the
// traversal settings plus the concrete components resolved from configuration.
type Walk struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	MaxPages  int            `json:"max_pages" yaml:"max_pages"`
	PageDelay time.Duration  `json:"page_delay" yaml:"page_delay"`
	Triggers  []Trigger      `json:"-" yaml:"-"`
	Seeds     []SeedProvider `json:"-" yaml:"-"`
	Detector  Detector       `json:"-" yaml:"-"`
	Fetcher   PageFetcher    `json:"-" yaml:"-"`
	Outputs   []Output       `json:"-" yaml:"-"`
}

// Session represents a single execution of a Walk.
type Session struct {
	ID          string        `json:"id" yaml:"id"`
	WalkID      string        `json:"walk_id" yaml:"walk_id"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Status      SessionStatus `json:"status" yaml:"status"`
	Traversals  []*Traversal  `json:"traversals,omitempty" yaml:"traversals,omitempty"`
	Errors      []WalkError   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// SessionStatus represents the current state of a session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// TriggerEvent represents a trigger firing.
type TriggerEvent struct {
	WalkID    string
	Timestamp time.Time
}

// Trigger defines when a walk runs. The trigger manages its own lifecycle and
// sends an event each time the walk should execute.
type Trigger interface {
	Start(ctx context.Context, walkID string) (<-chan TriggerEvent, error)
	Stop() error
}

// SeedProvider yields the URLs a session starts its traversals from.
type SeedProvider interface {
	Seeds(ctx context.Context) ([]string, error)
}

// PageFetcher retrieves a page and extracts its links, images and next-page
// candidate.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*PageBlock, error)
}

// Detector classifies a fetched page's pagination style.
type Detector interface {
	Detect(ctx context.Context, page *PageBlock) (Detection, error)
}

// Output delivers a completed session somewhere: an email, a file on disk.
type Output interface {
	Name() string
	Deliver(ctx context.Context, session *Session) error
}
