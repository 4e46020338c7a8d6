package detect

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

func parseSystemAndPromptTemplates(name, systemTemplate, promptTemplate string) (*template.Template, *template.Template, error) {
	systemTmpl, err := template.New(name + "-system").Parse(systemTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse system template for %s: %w", name, err)
	}
	promptTmpl, err := template.New(name + "-prompt").Parse(promptTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse prompt template for %s: %w", name, err)
	}
	return systemTmpl, promptTmpl, nil
}

func executeTemplate(tmpl *template.Template, data any) (string, error) {
	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}
	return builder.String(), nil
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// stripCodeFence removes a surrounding markdown code fence from an LLM
// response, if present, so the JSON inside can be decoded.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// truncate cuts s at limit bytes on a rune boundary. A limit of 0 means no
// truncation.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := s[:limit]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
