package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/retry"
)

const defaultMaxBodyBytes = 2 * 1024 * 1024

// Fetcher retrieves HTML pages over HTTP and extracts the pieces a traversal
// needs. It implements core.PageFetcher.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	policy       retry.Policy
}

func NewFetcher(timeout time.Duration, userAgent string, maxBodyBytes int) *Fetcher {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Fetcher{
		client:       &http.Client{Timeout: timeout},
		userAgent:    userAgent,
		maxBodyBytes: int64(maxBodyBytes),
		policy:       retry.Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*core.PageBlock, error) {
	var body string
	err := retry.Do(ctx, f.policy, func() error {
		fetched, err := f.fetchOnce(ctx, pageURL)
		if err != nil {
			return err
		}
		body = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	extraction, err := Extract(pageURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	block := &core.PageBlock{
		URL:       pageURL,
		Title:     extraction.Title,
		HTML:      body,
		Links:     extraction.Links,
		NextURL:   extraction.NextURL,
		FetchedAt: time.Now().UTC(),
	}
	for _, image := range extraction.Images {
		block.Images = append(block.Images, core.ImageRef{URL: image})
	}
	return block, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// 4xx and wrong content types will not get better on a retry.
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", retry.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", retry.Permanent(fmt.Errorf("unsupported content type %q", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
