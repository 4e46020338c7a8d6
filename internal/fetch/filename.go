package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

const fallbackFilename = "unnamed_image.jpg"

// FilenameAllocator hands out unique local filenames for downloaded images.
// The name comes from the URL's last path segment; collisions get a numeric
// suffix before the extension ("photo.jpg", "photo_1.jpg", ...).
type FilenameAllocator struct {
	used map[string]struct{}
}

func NewFilenameAllocator() *FilenameAllocator {
	return &FilenameAllocator{used: make(map[string]struct{})}
}

// Claim reserves and returns a filename for rawURL. Every call reserves a
// name, so claiming the same URL twice yields two distinct filenames.
func (a *FilenameAllocator) Claim(rawURL string) string {
	name := filenameFromURL(rawURL)
	if _, taken := a.used[name]; !taken {
		a.used[name] = struct{}{}
		return name
	}

	stem, ext := splitExt(name)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, taken := a.used[candidate]; !taken {
			a.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// Reset forgets all reserved names.
func (a *FilenameAllocator) Reset() {
	a.used = make(map[string]struct{})
}

func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackFilename
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segment := strings.TrimSpace(segments[i]); segment != "" {
			return segment
		}
	}
	return fallbackFilename
}

func splitExt(name string) (string, string) {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx], name[idx:]
	}
	return name, ""
}
