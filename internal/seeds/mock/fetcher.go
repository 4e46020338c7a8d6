package mock

import "context"

type Fetcher struct {
	LinksByFeed map[string][]string
	ErrByFeed   map[string]error
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]string, error) {
	_ = ctx
	if f.ErrByFeed != nil {
		if err, ok := f.ErrByFeed[feedURL]; ok {
			return nil, err
		}
	}
	links := f.LinksByFeed[feedURL]
	if limit > 0 && len(links) > limit {
		return links[:limit], nil
	}
	return links, nil
}
