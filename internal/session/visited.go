package session

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// VisitedSet remembers every URL a traversal has been to, keyed by normalized
// form, so the driver never follows the same page twice. One traversal owns
// one set; it is built at session start and discarded or Reset at session end.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Seen reports whether rawURL (in normalized form) was already recorded,
// recording it if not. This is test-and-set, not a pure query: the first call
// for a URL returns false and mutates the set, every later call returns true.
func (s *VisitedSet) Seen(rawURL string) bool {
	key := Normalize(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[key]; ok {
		return true
	}
	s.urls[key] = struct{}{}
	return false
}

// MarkCurrent records the page the caller is currently on without reporting
// membership.
func (s *VisitedSet) MarkCurrent(rawURL string) {
	key := Normalize(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[key] = struct{}{}
}

// Reset clears all recorded URLs.
func (s *VisitedSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = make(map[string]struct{})
}

// URLs returns every recorded normalized URL, sorted for stable output.
func (s *VisitedSet) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.urls))
	for u := range s.urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (s *VisitedSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// Normalize canonicalizes a URL for comparison: the host is lowercased, a
// single trailing slash is stripped from the path (unless the path is just
// "/"), query keys are sorted lexicographically and the fragment is dropped,
// so semantically identical paginated URLs ("?page=2&sort=asc" vs
// "?sort=asc&page=2", with or without a trailing slash) compare equal.
//
// Input that cannot be parsed fails open and is returned unchanged; callers
// treat the result as an opaque key either way.
func Normalize(rawURL string) string {
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return rawURL
	}
	return normalized
}

func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(strings.ToLower(u.Scheme))
		b.WriteString("://")
	}
	b.WriteString(strings.ToLower(u.Host))

	path := u.EscapedPath()
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	b.WriteString(path)

	// url.Values.Encode sorts by key, which is exactly the stable ordering
	// the comparison needs.
	if query := u.Query().Encode(); query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}

	return b.String(), nil
}
