package detect

import (
	"context"
	"testing"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
)

func TestPageFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"https://x.com/list?page=3", 3},
		{"https://x.com/list?p=7&sort=asc", 7},
		{"https://x.com/list?paged=2", 2},
		{"https://x.com/list", 0},
		{"https://x.com/list?page=abc", 0},
		{"https://x.com/list?page=-1", 0},
		{"http://[::1]:namedport", 0},
	}
	for _, tc := range cases {
		if got := PageFromURL(tc.in); got != tc.want {
			t.Errorf("PageFromURL(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRuleDetectorFirstMatchWins(t *testing.T) {
	detector, err := NewRuleDetector([]config.DetectRule{
		{Name: "numbered", Type: "numbered", Confidence: 0.9, Rule: "page > 0"},
		{Name: "next", Type: "next-link", Confidence: 0.6, Rule: "has_next_link"},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	page := &core.PageBlock{
		URL:     "https://x.com/list?page=4",
		NextURL: "https://x.com/list?page=5",
	}
	detection, err := detector.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "numbered" {
		t.Errorf("detection.Type = %q, want numbered", detection.Type)
	}
	if detection.Confidence != 0.9 {
		t.Errorf("detection.Confidence = %v, want 0.9", detection.Confidence)
	}
	if detection.Page != 4 {
		t.Errorf("detection.Page = %d, want 4", detection.Page)
	}
}

func TestRuleDetectorFallsThroughToLaterRules(t *testing.T) {
	detector, err := NewRuleDetector([]config.DetectRule{
		{Name: "numbered", Type: "numbered", Confidence: 0.9, Rule: "page > 0"},
		{Name: "next", Type: "next-link", Confidence: 0.6, Rule: "has_next_link"},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	page := &core.PageBlock{
		URL:     "https://x.com/list",
		NextURL: "https://x.com/list?after=abc",
	}
	detection, err := detector.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "next-link" {
		t.Errorf("detection.Type = %q, want next-link", detection.Type)
	}
	if detection.Page != 0 {
		t.Errorf("detection.Page = %d, want 0", detection.Page)
	}
}

func TestRuleDetectorNoMatchReportsNone(t *testing.T) {
	detector, err := NewRuleDetector([]config.DetectRule{
		{Name: "numbered", Type: "numbered", Confidence: 0.9, Rule: "page > 0"},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	detection, err := detector.Detect(context.Background(), &core.PageBlock{URL: "https://x.com/about"})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != TypeNone {
		t.Errorf("detection.Type = %q, want %q", detection.Type, TypeNone)
	}
}

func TestRuleDetectorQueryEnv(t *testing.T) {
	detector, err := NewRuleDetector([]config.DetectRule{
		{Name: "offset", Type: "offset", Confidence: 0.7, Rule: `query["offset"] != ""`},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	detection, err := detector.Detect(context.Background(), &core.PageBlock{URL: "https://x.com/list?offset=40"})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "offset" {
		t.Errorf("detection.Type = %q, want offset", detection.Type)
	}
}

func TestNewRuleDetectorRejectsBadExpression(t *testing.T) {
	_, err := NewRuleDetector([]config.DetectRule{
		{Name: "broken", Type: "broken", Rule: "page >"},
	})
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestChainUsesFirstConclusiveDetection(t *testing.T) {
	none, err := NewRuleDetector([]config.DetectRule{
		{Name: "never", Type: "numbered", Confidence: 0.9, Rule: "false"},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}
	next, err := NewRuleDetector([]config.DetectRule{
		{Name: "next", Type: "next-link", Confidence: 0.6, Rule: "has_next_link"},
	})
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	chain := NewChain(none, nil, next)
	detection, err := chain.Detect(context.Background(), &core.PageBlock{
		URL:     "https://x.com/list",
		NextURL: "https://x.com/list?cursor=2",
	})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "next-link" {
		t.Errorf("detection.Type = %q, want next-link", detection.Type)
	}
}

func TestEmptyChainReportsNone(t *testing.T) {
	detection, err := NewChain().Detect(context.Background(), &core.PageBlock{URL: "https://x.com"})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != TypeNone {
		t.Errorf("detection.Type = %q, want %q", detection.Type, TypeNone)
	}
}
