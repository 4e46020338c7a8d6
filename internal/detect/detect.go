// Package detect classifies how a fetched page paginates: numbered pages,
// a next link, or nothing the walker can follow. Detectors are chained, the
// first conclusive answer wins.
package detect

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bakkerme/pagewalk/internal/core"
)

// TypeNone is the detection type reported when no detector recognized the
// page's pagination style.
const TypeNone = "none"

// pageParamKeys are the query keys commonly used to carry a page number.
var pageParamKeys = []string{"page", "p", "pg", "paged"}

// PageFromURL extracts a page number from a URL's query string, or 0 when
// none of the usual page parameters carry a positive integer.
func PageFromURL(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	query := u.Query()
	for _, key := range pageParamKeys {
		value := query.Get(key)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			continue
		}
		return n
	}
	return 0
}

// Chain runs detectors in order and returns the first detection that is not
// TypeNone. Detector errors are returned immediately; an empty chain or a
// chain with no conclusive answer reports TypeNone.
type Chain struct {
	detectors []core.Detector
}

func NewChain(detectors ...core.Detector) *Chain {
	kept := make([]core.Detector, 0, len(detectors))
	for _, d := range detectors {
		if d != nil {
			kept = append(kept, d)
		}
	}
	return &Chain{detectors: kept}
}

func (c *Chain) Detect(ctx context.Context, page *core.PageBlock) (core.Detection, error) {
	for _, detector := range c.detectors {
		detection, err := detector.Detect(ctx, page)
		if err != nil {
			return core.Detection{}, err
		}
		if detection.Type != TypeNone && detection.Type != "" {
			return detection, nil
		}
	}
	return core.Detection{Type: TypeNone, Confidence: 0}, nil
}
