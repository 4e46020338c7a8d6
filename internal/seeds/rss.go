package seeds

import (
	"context"
	"fmt"
)

// FeedFetcher retrieves the entry links of one feed, newest first.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string, limit int) ([]string, error)
}

// RSS seeds traversals from the entry links of RSS/Atom feeds.
type RSS struct {
	fetcher FeedFetcher
	feeds   []string
	limit   int
}

func NewRSS(fetcher FeedFetcher, feeds []string, limit int) (*RSS, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("feed fetcher is required")
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("at least one feed is required")
	}
	return &RSS{fetcher: fetcher, feeds: feeds, limit: limit}, nil
}

func (r *RSS) Seeds(ctx context.Context) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, feed := range r.feeds {
		links, err := r.fetcher.Fetch(ctx, feed, r.limit)
		if err != nil {
			return nil, fmt.Errorf("fetch feed %s: %w", feed, err)
		}
		for _, link := range links {
			if link == "" {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			out = append(out, link)
		}
	}
	return out, nil
}
