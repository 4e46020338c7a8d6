package impl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bakkerme/pagewalk/internal/retry"
	"github.com/mmcdole/gofeed"
)

type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &Fetcher{client: client, parser: parser}
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]string, error) {
	var feed *gofeed.Feed
	err := retry.Do(ctx, retry.Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond}, func() error {
		parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return err
		}
		feed = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	links := make([]string, 0, limit)
	for _, entry := range feed.Items {
		if len(links) >= limit {
			break
		}
		if entry.Link == "" {
			continue
		}
		links = append(links, entry.Link)
	}

	return links, nil
}
