// Package factory resolves walk configuration into the concrete components
// the runner drives.
package factory

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/detect"
	"github.com/bakkerme/pagewalk/internal/fetch"
	"github.com/bakkerme/pagewalk/internal/llm"
	llmopenai "github.com/bakkerme/pagewalk/internal/llm/openai"
	"github.com/bakkerme/pagewalk/internal/outputs/email"
	"github.com/bakkerme/pagewalk/internal/outputs/email/smtp"
	"github.com/bakkerme/pagewalk/internal/report"
	"github.com/bakkerme/pagewalk/internal/seeds"
	seedsimpl "github.com/bakkerme/pagewalk/internal/seeds/impl"
	"github.com/bakkerme/pagewalk/internal/trigger"
)

type Factory struct {
	Logger             *slog.Logger
	LLMClient          llm.Client
	DefaultModel       string
	DefaultTemperature *float64
	FetchDefaults      config.FetchEnvConfig
	SMTPDefaults       config.SMTPEnvConfig
	RSSFetcher         seeds.FeedFetcher

	// EmailSender overrides the SMTP sender built from SMTPDefaults; tests
	// inject a mock here.
	EmailSender email.Sender
}

func NewFromEnvConfig(logger *slog.Logger, env config.EnvConfig) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		Logger:             logger,
		LLMClient:          llmopenai.NewClient(env.OpenAI),
		DefaultModel:       env.OpenAI.Model,
		DefaultTemperature: env.OpenAI.Temperature,
		FetchDefaults:      env.Fetch,
		SMTPDefaults:       env.SMTP,
		RSSFetcher:         seedsimpl.NewFetcher(env.RSS.HTTPTimeout, env.RSS.UserAgent),
	}
}

func (f *Factory) NewCronTrigger(cfg *config.CronTrigger) (core.Trigger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cron trigger config is required")
	}
	return trigger.NewCron(cfg.Schedule, cfg.Timezone)
}

func (f *Factory) NewStaticSeeds(urls []string) (core.SeedProvider, error) {
	return seeds.NewStatic(urls)
}

func (f *Factory) NewRSSSeeds(cfg *config.RSSSeeds) (core.SeedProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rss seeds config is required")
	}
	return seeds.NewRSS(f.RSSFetcher, cfg.Feeds, cfg.Limit)
}

// NewDetector chains the configured rule detector and, when present, the LLM
// classifier behind it. An empty configuration yields a chain that always
// reports no detection.
func (f *Factory) NewDetector(cfg *config.DetectConfig) (core.Detector, error) {
	var detectors []core.Detector
	if cfg != nil && len(cfg.Rules) > 0 {
		rules, err := detect.NewRuleDetector(cfg.Rules)
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, rules)
	}
	if cfg != nil && cfg.LLM != nil {
		classifier, err := detect.NewLLMDetector(cfg.LLM, f.LLMClient, f.DefaultModel, f.DefaultTemperature)
		if err != nil {
			return nil, err
		}
		detectors = append(detectors, classifier)
	}
	return detect.NewChain(detectors...), nil
}

func (f *Factory) NewFetcher(cfg *config.FetchConfig) (core.PageFetcher, error) {
	timeout := f.FetchDefaults.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	userAgent := f.FetchDefaults.UserAgent
	maxBodyBytes := f.FetchDefaults.MaxBodyBytes

	if cfg != nil {
		if cfg.Timeout != "" {
			parsed, err := config.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("fetch timeout: %w", err)
			}
			timeout = parsed
		}
		if cfg.UserAgent != "" {
			userAgent = cfg.UserAgent
		}
		if cfg.MaxBodyBytes > 0 {
			maxBodyBytes = cfg.MaxBodyBytes
		}
	}

	return fetch.NewFetcher(timeout, userAgent, maxBodyBytes), nil
}

func (f *Factory) NewEmailOutput(cfg *config.EmailOutput) (core.Output, error) {
	sender := f.EmailSender
	if sender == nil {
		built, err := smtp.NewSender(f.SMTPDefaults)
		if err != nil {
			return nil, fmt.Errorf("smtp sender: %w", err)
		}
		sender = built
	}
	return report.NewEmailOutput(cfg, sender)
}

func (f *Factory) NewFileOutput(cfg *config.FileOutput) (core.Output, error) {
	return report.NewFileOutput(cfg)
}
