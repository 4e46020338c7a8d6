package config

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
)

// validateDetectTemplates executes every configured detect template against a
// fully populated sample page. A template that references a field the page
// does not have fails here, at document load, instead of on every page of a
// traversal.
func (d *WalkDocument) validateDetectTemplates() error {
	llmCfg := d.Walk.Detect.LLM
	if llmCfg == nil {
		return nil
	}

	page := samplePageBlockForTemplateValidation()
	if llmCfg.SystemTemplate != "" {
		if err := typeCheckTextTemplate("detect.llm.system_template", llmCfg.SystemTemplate, page); err != nil {
			return fmt.Errorf("detect llm: system_template type check failed: %w", err)
		}
	}
	if llmCfg.PromptTemplate != "" {
		if err := typeCheckTextTemplate("detect.llm.prompt_template", llmCfg.PromptTemplate, page); err != nil {
			return fmt.Errorf("detect llm: prompt_template type check failed: %w", err)
		}
	}
	return nil
}

func typeCheckTextTemplate(name, templateText string, data any) error {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(templateText)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	return tmpl.Execute(&buf, data)
}

func samplePageBlockForTemplateValidation() *core.PageBlock {
	now := time.Unix(0, 0).UTC()
	return &core.PageBlock{
		SessionID: "session",
		Page:      1,
		URL:       "https://example.com/list?page=1",
		Title:     "Example listing",
		HTML:      "<html><body></body></html>",
		Links:     []string{"https://example.com/item/1"},
		Images: []core.ImageRef{
			{URL: "https://example.com/image.jpg", Filename: "image.jpg"},
		},
		NextURL: "https://example.com/list?page=2",
		Detection: &core.Detection{
			Type:       "numbered",
			Confidence: 1,
			Page:       1,
			DetectedAt: now,
		},
		FetchedAt: now,
	}
}
