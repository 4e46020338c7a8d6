package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/llm"
	llmmock "github.com/bakkerme/pagewalk/internal/llm/mock"
)

func TestLLMDetectorParsesResponse(t *testing.T) {
	client := &llmmock.Client{
		Responses: []llm.ChatResponse{
			{Content: `{"type":"numbered","confidence":0.85,"page":3}`},
		},
	}
	detector, err := NewLLMDetector(&config.LLMDetect{}, client, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	page := &core.PageBlock{URL: "https://x.com/list?page=3", HTML: "<html></html>"}
	detection, err := detector.Detect(context.Background(), page)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "numbered" || detection.Confidence != 0.85 || detection.Page != 3 {
		t.Errorf("unexpected detection: %+v", detection)
	}
	if len(client.Calls) != 1 {
		t.Fatalf("expected 1 llm call, got %d", len(client.Calls))
	}
	if client.Calls[0].Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", client.Calls[0].Model)
	}
}

func TestLLMDetectorStripsCodeFence(t *testing.T) {
	client := &llmmock.Client{
		Responses: []llm.ChatResponse{
			{Content: "```json\n{\"type\":\"next-link\",\"confidence\":0.6,\"page\":0}\n```"},
		},
	}
	detector, err := NewLLMDetector(&config.LLMDetect{}, client, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	detection, err := detector.Detect(context.Background(), &core.PageBlock{URL: "https://x.com/list"})
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

func TestLLMDetectorRetriesInvalidJSON(t *testing.T) {
	client := &llmmock.Client{
		Responses: []llm.ChatResponse{
			{Content: "the page looks numbered to me"},
			{Content: `{"type":"numbered","confidence":0.7,"page":2}`},
		},
	}
	detector, err := NewLLMDetector(&config.LLMDetect{}, client, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	detection, err := detector.Detect(context.Background(), &core.PageBlock{URL: "https://x.com/list?page=2"})
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if detection.Type != "numbered" || detection.Page != 2 {
		t.Errorf("unexpected detection: %+v", detection)
	}
	if len(client.Calls) != 2 {
		t.Fatalf("expected 2 llm calls, got %d", len(client.Calls))
	}
}

func TestLLMDetectorGivesUpAfterRetries(t *testing.T) {
	client := &llmmock.Client{
		Responses: []llm.ChatResponse{{Content: "not json"}},
	}
	detector, err := NewLLMDetector(&config.LLMDetect{InvalidJSONRetries: 2}, client, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	_, err = detector.Detect(context.Background(), &core.PageBlock{URL: "https://x.com/list"})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "invalid json") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(client.Calls) != 2 {
		t.Fatalf("expected 2 llm calls, got %d", len(client.Calls))
	}
}

func TestLLMDetectorTruncatesHTML(t *testing.T) {
	client := &llmmock.Client{
		Responses: []llm.ChatResponse{
			{Content: `{"type":"none","confidence":0,"page":0}`},
		},
	}
	detector, err := NewLLMDetector(&config.LLMDetect{MaxHTMLBytes: 32}, client, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("failed to build detector: %v", err)
	}

	page := &core.PageBlock{
		URL:  "https://x.com/list",
		HTML: strings.Repeat("x", 1024),
	}
	if _, err := detector.Detect(context.Background(), page); err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	prompt := client.Calls[0].Messages[1].Content
	if strings.Contains(prompt, strings.Repeat("x", 64)) {
		t.Error("expected page HTML to be truncated in the prompt")
	}
}

func TestNewLLMDetectorRequiresClient(t *testing.T) {
	if _, err := NewLLMDetector(&config.LLMDetect{}, nil, "gpt-4o-mini", nil); err == nil {
		t.Fatal("expected error without a client")
	}
}
