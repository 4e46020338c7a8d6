package config

import (
	"fmt"
	"net/mail"
	"net/url"

	"github.com/bakkerme/pagewalk/internal/core"
)

// WalkDocument represents the top-level structure of a pagewalk.yaml file
type WalkDocument struct {
	Walk WalkConfig `yaml:"walk"`
}

// WalkConfig contains the complete walk configuration
type WalkConfig struct {
	Name      string          `yaml:"name"`
	MaxPages  int             `yaml:"max_pages,omitempty"`
	PageDelay string          `yaml:"page_delay,omitempty"`
	Fetch     *FetchConfig    `yaml:"fetch,omitempty"`
	Trigger   []TriggerConfig `yaml:"trigger,omitempty"`
	Seeds     []SeedConfig    `yaml:"seeds"`
	Detect    DetectConfig    `yaml:"detect,omitempty"`
	Output    []OutputConfig  `yaml:"output"`
}

// TriggerConfig wraps different trigger types
type TriggerConfig struct {
	Cron *CronTrigger `yaml:"cron,omitempty"`
}

// CronTrigger defines a scheduled trigger
type CronTrigger struct {
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone,omitempty"`
}

// SeedConfig wraps different seed-provider types
type SeedConfig struct {
	URLs []string  `yaml:"urls,omitempty"`
	RSS  *RSSSeeds `yaml:"rss,omitempty"`
}

// RSSSeeds seeds traversals from the entry links of RSS/Atom feeds
type RSSSeeds struct {
	Feeds []string `yaml:"feeds"`
	Limit int      `yaml:"limit,omitempty"`
}

// FetchConfig tunes the page fetcher
type FetchConfig struct {
	Timeout      string `yaml:"timeout,omitempty"`
	UserAgent    string `yaml:"user_agent,omitempty"`
	MaxBodyBytes int    `yaml:"max_body_bytes,omitempty"`
}

// DetectConfig configures page-type detection. Rules are evaluated in order;
// the LLM detector, when present, is consulted for pages no rule matched.
type DetectConfig struct {
	Rules []DetectRule `yaml:"rules,omitempty"`
	LLM   *LLMDetect   `yaml:"llm,omitempty"`
}

// DetectRule defines one expression-based detection rule
type DetectRule struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	Confidence float64 `yaml:"confidence"`
	Rule       string  `yaml:"rule"`
}

// LLMDetect defines AI-powered page-type classification
type LLMDetect struct {
	Name               string   `yaml:"name"`
	Model              string   `yaml:"model,omitempty"`
	Temperature        *float64 `yaml:"temperature,omitempty"`
	SystemTemplate     string   `yaml:"system_template,omitempty"`
	PromptTemplate     string   `yaml:"prompt_template,omitempty"`
	MaxHTMLBytes       int      `yaml:"max_html_bytes,omitempty"`
	InvalidJSONRetries int      `yaml:"invalid_json_retries,omitempty"`
}

// OutputConfig wraps different output types
type OutputConfig struct {
	Email *EmailOutput `yaml:"email,omitempty"`
	File  *FileOutput  `yaml:"file,omitempty"`
}

// EmailOutput delivers the rendered session report over SMTP
type EmailOutput struct {
	To      string `yaml:"to"`
	From    string `yaml:"from,omitempty"`
	Subject string `yaml:"subject"`
}

// FileOutput writes the rendered session report to disk
type FileOutput struct {
	Path string `yaml:"path"`
}

// ComponentFactory builds the concrete components a parsed walk needs.
// Implementations decide which fetcher, detector chain and senders back the
// configuration.
type ComponentFactory interface {
	NewCronTrigger(config *CronTrigger) (core.Trigger, error)
	NewStaticSeeds(urls []string) (core.SeedProvider, error)
	NewRSSSeeds(config *RSSSeeds) (core.SeedProvider, error)
	NewDetector(config *DetectConfig) (core.Detector, error)
	NewFetcher(config *FetchConfig) (core.PageFetcher, error)
	NewEmailOutput(config *EmailOutput) (core.Output, error)
	NewFileOutput(config *FileOutput) (core.Output, error)
}

// Validate performs validation on the walk document
func (d *WalkDocument) Validate() error {
	if d.Walk.Name == "" {
		return fmt.Errorf("walk name is required")
	}
	if len(d.Walk.Seeds) == 0 {
		return fmt.Errorf("at least one seed is required")
	}
	for i, seed := range d.Walk.Seeds {
		if len(seed.URLs) == 0 && seed.RSS == nil {
			return fmt.Errorf("seed %d: either urls or rss is required", i)
		}
		for _, raw := range seed.URLs {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("seed %d: invalid url %q", i, raw)
			}
		}
		if seed.RSS != nil && len(seed.RSS.Feeds) == 0 {
			return fmt.Errorf("seed %d: rss seeds need at least one feed", i)
		}
	}

	if d.Walk.PageDelay != "" {
		if _, err := parseDurationExtended(d.Walk.PageDelay); err != nil {
			return fmt.Errorf("page_delay: %w", err)
		}
	}
	if d.Walk.Fetch != nil && d.Walk.Fetch.Timeout != "" {
		if _, err := parseDurationExtended(d.Walk.Fetch.Timeout); err != nil {
			return fmt.Errorf("fetch timeout: %w", err)
		}
	}

	for i, rule := range d.Walk.Detect.Rules {
		if rule.Name == "" || rule.Rule == "" || rule.Type == "" {
			return fmt.Errorf("detect rule %d: name, type and rule are required", i)
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			return fmt.Errorf("detect rule %q: confidence must be between 0 and 1", rule.Name)
		}
	}
	if err := d.validateDetectTemplates(); err != nil {
		return err
	}

	if len(d.Walk.Output) == 0 {
		return fmt.Errorf("output configuration is required")
	}
	for i, output := range d.Walk.Output {
		if output.Email == nil && output.File == nil {
			return fmt.Errorf("output %d: either email or file is required", i)
		}
		if output.Email != nil {
			if output.Email.To == "" || output.Email.Subject == "" {
				return fmt.Errorf("output email: to and subject are required")
			}
			if _, err := mail.ParseAddress(output.Email.To); err != nil {
				return fmt.Errorf("output email: invalid to address")
			}
			if output.Email.From != "" { // From is optional, but if provided must be valid
				if _, err := mail.ParseAddress(output.Email.From); err != nil {
					return fmt.Errorf("output email: invalid from address")
				}
			}
		}
		if output.File != nil && output.File.Path == "" {
			return fmt.Errorf("output file: path is required")
		}
	}

	return nil
}

// ParseToWalk converts the document into a core.Walk without concrete
// components attached.
func (d *WalkDocument) ParseToWalk() (*core.Walk, error) {
	return d.ParseToWalkWithFactory(nil)
}

// ParseToWalkWithFactory converts the document into a core.Walk, resolving
// each configured component through the factory. When factory is nil the walk
// carries settings only.
func (d *WalkDocument) ParseToWalkWithFactory(factory ComponentFactory) (*core.Walk, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	walk := &core.Walk{
		ID:       "", // Should be set by the caller
		Name:     d.Walk.Name,
		MaxPages: d.Walk.MaxPages,
	}
	if walk.MaxPages <= 0 {
		walk.MaxPages = 20
	}
	if d.Walk.PageDelay != "" {
		delay, err := parseDurationExtended(d.Walk.PageDelay)
		if err != nil {
			return nil, fmt.Errorf("page_delay: %w", err)
		}
		walk.PageDelay = delay
	}

	if factory == nil {
		return walk, nil
	}

	for _, trigger := range d.Walk.Trigger {
		if trigger.Cron == nil {
			continue
		}
		built, err := factory.NewCronTrigger(trigger.Cron)
		if err != nil {
			return nil, fmt.Errorf("cron trigger: %w", err)
		}
		walk.Triggers = append(walk.Triggers, built)
	}

	for i, seed := range d.Walk.Seeds {
		if len(seed.URLs) > 0 {
			built, err := factory.NewStaticSeeds(seed.URLs)
			if err != nil {
				return nil, fmt.Errorf("seed %d: %w", i, err)
			}
			walk.Seeds = append(walk.Seeds, built)
		}
		if seed.RSS != nil {
			built, err := factory.NewRSSSeeds(seed.RSS)
			if err != nil {
				return nil, fmt.Errorf("seed %d: %w", i, err)
			}
			walk.Seeds = append(walk.Seeds, built)
		}
	}

	detector, err := factory.NewDetector(&d.Walk.Detect)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}
	walk.Detector = detector

	fetcher, err := factory.NewFetcher(d.Walk.Fetch)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	walk.Fetcher = fetcher

	for i, output := range d.Walk.Output {
		if output.Email != nil {
			built, err := factory.NewEmailOutput(output.Email)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			walk.Outputs = append(walk.Outputs, built)
		}
		if output.File != nil {
			built, err := factory.NewFileOutput(output.File)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			walk.Outputs = append(walk.Outputs, built)
		}
	}

	return walk, nil
}
