package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bakkerme/pagewalk/internal/config"
	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/outputs/email"
)

// EmailOutput mails the rendered session report.
type EmailOutput struct {
	cfg    config.EmailOutput
	sender email.Sender
}

func NewEmailOutput(cfg *config.EmailOutput, sender email.Sender) (*EmailOutput, error) {
	if cfg == nil {
		return nil, fmt.Errorf("email output config is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if cfg.To == "" || cfg.Subject == "" {
		return nil, fmt.Errorf("email output: to and subject are required")
	}
	return &EmailOutput{cfg: *cfg, sender: sender}, nil
}

func (o *EmailOutput) Name() string { return "email" }

func (o *EmailOutput) Deliver(ctx context.Context, session *core.Session) error {
	body, err := HTML(Markdown(session))
	if err != nil {
		return err
	}
	err = o.sender.Send(ctx, email.Message{
		From:    o.cfg.From,
		To:      []string{o.cfg.To},
		Subject: expandSubject(o.cfg.Subject, session),
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("deliver report email: %w", err)
	}
	return nil
}

// expandSubject substitutes {walk} and {date} placeholders in the configured
// subject line.
func expandSubject(subject string, session *core.Session) string {
	subject = strings.ReplaceAll(subject, "{walk}", session.WalkID)
	subject = strings.ReplaceAll(subject, "{date}", session.StartedAt.UTC().Format("2006-01-02"))
	return subject
}

// FileOutput writes the markdown report to disk. The path may contain {walk}
// and {date} placeholders.
type FileOutput struct {
	path string
}

func NewFileOutput(cfg *config.FileOutput) (*FileOutput, error) {
	if cfg == nil {
		return nil, fmt.Errorf("file output config is required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("file output: path is required")
	}
	return &FileOutput{path: cfg.Path}, nil
}

func (o *FileOutput) Name() string { return "file" }

func (o *FileOutput) Deliver(ctx context.Context, session *core.Session) error {
	_ = ctx
	path := o.expandPath(session)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Markdown(session)), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func (o *FileOutput) expandPath(session *core.Session) string {
	path := strings.ReplaceAll(o.path, "{walk}", session.WalkID)
	return strings.ReplaceAll(path, "{date}", session.StartedAt.UTC().Format("2006-01-02"))
}
