// Package seeds supplies the URLs a walk session starts its traversals from.
package seeds

import (
	"context"
	"fmt"
	"net/url"
)

// Static yields a fixed, configured list of seed URLs.
type Static struct {
	urls []string
}

func NewStatic(urls []string) (*Static, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one seed url is required")
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid seed url %q", raw)
		}
	}
	return &Static{urls: urls}, nil
}

func (s *Static) Seeds(ctx context.Context) ([]string, error) {
	_ = ctx
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out, nil
}
