package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/llm"
)

var decodeRetries = 3

const defaultSystemTemplate = `You classify how a web page paginates. Answer with a single JSON object:
{"type": "<numbered|next-link|infinite-scroll|none>", "confidence": <0..1>, "page": <current page number, or 0 if unknown>}
Respond with JSON only, no prose.`

const defaultPromptTemplate = `URL: {{.URL}}
Title: {{.Title}}
Links on page: {{len .Links}}
Has rel-next candidate: {{if .NextURL}}yes{{else}}no{{end}}

Page HTML (may be truncated):
{{.HTML}}`

const defaultMaxHTMLBytes = 16 * 1024

type llmResponse struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Page       int     `json:"page"`
}

// LLMDetector asks a chat model to classify a page's pagination style. The
// model must answer with a small JSON object; invalid JSON is retried a
// bounded number of times.
type LLMDetector struct {
	name           string
	config         config.LLMDetect
	client         llm.Client
	defaultModel   string
	defaultTemp    *float64
	systemTemplate *template.Template
	promptTemplate *template.Template
}

func NewLLMDetector(cfg *config.LLMDetect, client llm.Client, defaultModel string, defaultTemp *float64) (*LLMDetector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm detect config is required")
	}
	if client == nil {
		return nil, fmt.Errorf("llm client is required for llm detection")
	}

	name := cfg.Name
	if name == "" {
		name = "llm-detect"
	}
	systemText := cfg.SystemTemplate
	if systemText == "" {
		systemText = defaultSystemTemplate
	}
	promptText := cfg.PromptTemplate
	if promptText == "" {
		promptText = defaultPromptTemplate
	}

	systemTmpl, promptTmpl, err := parseSystemAndPromptTemplates(name, systemText, promptText)
	if err != nil {
		return nil, err
	}

	return &LLMDetector{
		name:           name,
		config:         *cfg,
		client:         client,
		defaultModel:   defaultModel,
		defaultTemp:    defaultTemp,
		systemTemplate: systemTmpl,
		promptTemplate: promptTmpl,
	}, nil
}

func (d *LLMDetector) Detect(ctx context.Context, page *core.PageBlock) (core.Detection, error) {
	if page == nil {
		return core.Detection{}, fmt.Errorf("page is required")
	}

	logger := core.LoggerFromContext(ctx).With("detector", d.name)

	maxHTML := d.config.MaxHTMLBytes
	if maxHTML <= 0 {
		maxHTML = defaultMaxHTMLBytes
	}
	prompted := *page
	prompted.HTML = truncate(page.HTML, maxHTML)

	systemPrompt, err := executeTemplate(d.systemTemplate, &prompted)
	if err != nil {
		return core.Detection{}, err
	}
	userPrompt, err := executeTemplate(d.promptTemplate, &prompted)
	if err != nil {
		return core.Detection{}, err
	}

	request := llm.ChatRequest{
		Model: modelOrDefault(d.config.Model, d.defaultModel),
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
	}
	if d.config.Temperature != nil {
		request.Temperature = *d.config.Temperature
	} else if d.defaultTemp != nil {
		request.Temperature = *d.defaultTemp
	}

	retries := d.config.InvalidJSONRetries
	if retries <= 0 {
		retries = decodeRetries
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		response, err := d.client.ChatCompletion(ctx, request)
		if err != nil {
			return core.Detection{}, fmt.Errorf("llm detection: %w", err)
		}

		var parsed llmResponse
		if err := json.Unmarshal([]byte(stripCodeFence(response.Content)), &parsed); err != nil {
			lastErr = err
			logger.Warn("llm detection returned invalid json", "attempt", attempt+1, "error", err)
			continue
		}

		detection := core.Detection{
			Type:       strings.TrimSpace(strings.ToLower(parsed.Type)),
			Confidence: clampConfidence(parsed.Confidence),
			DetectedAt: time.Now().UTC(),
		}
		if detection.Type == "" {
			detection.Type = TypeNone
		}
		if parsed.Page > 0 {
			detection.Page = parsed.Page
		}
		return detection, nil
	}

	return core.Detection{}, fmt.Errorf("llm detection: invalid json after %d attempts: %w", retries, lastErr)
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
