package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
	"gopkg.in/yaml.v3"
)

const validDocument = `
walk:
  name: Example Walk
  max_pages: 10
  page_delay: 2s
  fetch:
    timeout: 15s
    user_agent: pagewalk-test/0.1
  trigger:
    - cron:
        schedule: "0 6 * * *"
        timezone: UTC
  seeds:
    - urls:
        - https://example.com/blog
    - rss:
        feeds:
          - https://example.com/feed.xml
        limit: 5
  detect:
    rules:
      - name: numbered
        type: numbered
        confidence: 0.9
        rule: page > 0
  output:
    - file:
        path: /tmp/report.html
    - email:
        to: test@example.com
        from: noreply@example.com
        subject: Walk report
`

type nopSeeds struct{}

func (nopSeeds) Seeds(ctx context.Context) ([]string, error) { return nil, nil }

type nopDetector struct{}

func (nopDetector) Detect(ctx context.Context, page *core.PageBlock) (core.Detection, error) {
	return core.Detection{Type: "none"}, nil
}

type nopFetcher struct{}

func (nopFetcher) Fetch(ctx context.Context, pageURL string) (*core.PageBlock, error) {
	return &core.PageBlock{URL: pageURL}, nil
}

type nopOutput struct{ name string }

func (o nopOutput) Name() string                                        { return o.name }
func (o nopOutput) Deliver(ctx context.Context, s *core.Session) error { return nil }

type nopTrigger struct{}

func (nopTrigger) Start(ctx context.Context, walkID string) (<-chan core.TriggerEvent, error) {
	return nil, nil
}
func (nopTrigger) Stop() error { return nil }

// countingFactory records which component constructors ran.
type countingFactory struct {
	triggers, static, rss, detectors, fetchers, emails, files int
}

func (f *countingFactory) NewCronTrigger(config *CronTrigger) (core.Trigger, error) {
	f.triggers++
	return nopTrigger{}, nil
}

func (f *countingFactory) NewStaticSeeds(urls []string) (core.SeedProvider, error) {
	f.static++
	return nopSeeds{}, nil
}

func (f *countingFactory) NewRSSSeeds(config *RSSSeeds) (core.SeedProvider, error) {
	f.rss++
	return nopSeeds{}, nil
}

func (f *countingFactory) NewDetector(config *DetectConfig) (core.Detector, error) {
	f.detectors++
	return nopDetector{}, nil
}

func (f *countingFactory) NewFetcher(config *FetchConfig) (core.PageFetcher, error) {
	f.fetchers++
	return nopFetcher{}, nil
}

func (f *countingFactory) NewEmailOutput(config *EmailOutput) (core.Output, error) {
	f.emails++
	return nopOutput{name: "email"}, nil
}

func (f *countingFactory) NewFileOutput(config *FileOutput) (core.Output, error) {
	f.files++
	return nopOutput{name: "file"}, nil
}

func loadDocument(t *testing.T, text string) *WalkDocument {
	t.Helper()
	var doc WalkDocument
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("failed to unmarshal document: %v", err)
	}
	return &doc
}

func TestValidDocumentParses(t *testing.T) {
	doc := loadDocument(t, validDocument)

	factory := &countingFactory{}
	walk, err := doc.ParseToWalkWithFactory(factory)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if walk.Name != "Example Walk" {
		t.Errorf("walk.Name = %q", walk.Name)
	}
	if walk.MaxPages != 10 {
		t.Errorf("walk.MaxPages = %d, want 10", walk.MaxPages)
	}
	if walk.PageDelay != 2*time.Second {
		t.Errorf("walk.PageDelay = %s, want 2s", walk.PageDelay)
	}
	if factory.triggers != 1 || factory.static != 1 || factory.rss != 1 ||
		factory.detectors != 1 || factory.fetchers != 1 ||
		factory.emails != 1 || factory.files != 1 {
		t.Errorf("unexpected factory usage: %+v", factory)
	}
	if len(walk.Seeds) != 2 {
		t.Errorf("expected 2 seed providers, got %d", len(walk.Seeds))
	}
	if len(walk.Outputs) != 2 {
		t.Errorf("expected 2 outputs, got %d", len(walk.Outputs))
	}
}

func TestParseWithoutFactoryKeepsSettingsOnly(t *testing.T) {
	doc := loadDocument(t, validDocument)

	walk, err := doc.ParseToWalk()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if walk.Detector != nil || walk.Fetcher != nil || len(walk.Outputs) != 0 {
		t.Error("expected no components without a factory")
	}
}

func TestMaxPagesDefault(t *testing.T) {
	doc := loadDocument(t, validDocument)
	doc.Walk.MaxPages = 0

	walk, err := doc.ParseToWalk()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if walk.MaxPages != 20 {
		t.Errorf("expected default max pages 20, got %d", walk.MaxPages)
	}
}

func TestValidateAcceptsWellTypedDetectTemplates(t *testing.T) {
	doc := loadDocument(t, validDocument)
	doc.Walk.Detect.LLM = &LLMDetect{
		Name:           "classify",
		SystemTemplate: "Classify pagination.",
		PromptTemplate: "URL: {{.URL}} Title: {{.Title}} Links: {{len .Links}} Next: {{.NextURL}}",
	}

	if err := doc.Validate(); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(doc *WalkDocument)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(doc *WalkDocument) { doc.Walk.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "no seeds",
			mutate:  func(doc *WalkDocument) { doc.Walk.Seeds = nil },
			wantErr: "at least one seed",
		},
		{
			name: "empty seed entry",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Seeds = []SeedConfig{{}}
			},
			wantErr: "either urls or rss",
		},
		{
			name: "relative seed url",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Seeds[0].URLs = []string{"/just/a/path"}
			},
			wantErr: "invalid url",
		},
		{
			name:    "no outputs",
			mutate:  func(doc *WalkDocument) { doc.Walk.Output = nil },
			wantErr: "output configuration is required",
		},
		{
			name: "email missing subject",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Output[1].Email.Subject = ""
			},
			wantErr: "to and subject are required",
		},
		{
			name: "invalid email address",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Output[1].Email.To = "not-an-address"
			},
			wantErr: "invalid to address",
		},
		{
			name: "rule missing expression",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Detect.Rules[0].Rule = ""
			},
			wantErr: "name, type and rule are required",
		},
		{
			name: "confidence out of range",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Detect.Rules[0].Confidence = 1.5
			},
			wantErr: "confidence must be between",
		},
		{
			name: "bad page delay",
			mutate: func(doc *WalkDocument) {
				doc.Walk.PageDelay = "soon"
			},
			wantErr: "page_delay",
		},
		{
			name: "llm prompt template with unknown field",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Detect.LLM = &LLMDetect{Name: "classify", PromptTemplate: "{{.Bogus}}"}
			},
			wantErr: "prompt_template type check failed",
		},
		{
			name: "llm system template with unknown field",
			mutate: func(doc *WalkDocument) {
				doc.Walk.Detect.LLM = &LLMDetect{Name: "classify", SystemTemplate: "{{.Page.Missing}}"}
			},
			wantErr: "system_template type check failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := loadDocument(t, validDocument)
			tc.mutate(doc)

			err := doc.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.wantErr)
			}
		})
	}
}
