package detect

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
)

type compiledRule struct {
	config  config.DetectRule
	program *vm.Program
}

// RuleDetector classifies pages with configured boolean expressions. Rules
// are evaluated in document order; the first match decides the detection.
type RuleDetector struct {
	rules []compiledRule
}

func NewRuleDetector(rules []config.DetectRule) (*RuleDetector, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Name == "" || rule.Rule == "" || rule.Type == "" {
			return nil, fmt.Errorf("detect rule name, type and expression are required")
		}
		program, err := expr.Compile(rule.Rule)
		if err != nil {
			return nil, fmt.Errorf("compile detect rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{config: rule, program: program})
	}
	return &RuleDetector{rules: compiled}, nil
}

func (d *RuleDetector) Detect(ctx context.Context, page *core.PageBlock) (core.Detection, error) {
	_ = ctx
	if page == nil {
		return core.Detection{}, fmt.Errorf("page is required")
	}

	env := ruleEnv(page)
	for _, rule := range d.rules {
		result, err := expr.Run(rule.program, env)
		if err != nil {
			return core.Detection{}, fmt.Errorf("run detect rule %q: %w", rule.config.Name, err)
		}
		matched, ok := result.(bool)
		if !ok {
			return core.Detection{}, fmt.Errorf("detect rule %q did not return bool", rule.config.Name)
		}
		if matched {
			return core.Detection{
				Type:       rule.config.Type,
				Confidence: rule.config.Confidence,
				Page:       PageFromURL(page.URL),
				DetectedAt: time.Now().UTC(),
			}, nil
		}
	}

	return core.Detection{Type: TypeNone, Confidence: 0}, nil
}

func ruleEnv(page *core.PageBlock) map[string]interface{} {
	host := ""
	path := ""
	query := map[string]string{}
	if u, err := url.Parse(page.URL); err == nil {
		host = u.Host
		path = u.Path
		for key, values := range u.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}
	}

	return map[string]interface{}{
		"url":   page.URL,
		"host":  host,
		"path":  path,
		"title": page.Title,
		"query": query,
		"page":  PageFromURL(page.URL),
		"links": map[string]interface{}{
			"count": len(page.Links),
		},
		"images": map[string]interface{}{
			"count": len(page.Images),
		},
		"has_next_link": page.NextURL != "",
	}
}
