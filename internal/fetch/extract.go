package fetch

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Extraction holds everything pulled out of one page: the links to report,
// the images to catalogue, and the best next-page candidate to follow.
type Extraction struct {
	Title   string
	Links   []string
	Images  []string
	NextURL string
}

// nextLinkTexts are anchor texts that usually point at the following page of
// a listing.
var nextLinkTexts = map[string]struct{}{
	"next":      {},
	"next page": {},
	"older":     {},
	"more":      {},
	">":         {},
	"»":         {},
	"›":         {},
}

// Extract walks the document once, collecting the title, <a href> values and
// <img> sources resolved against baseURL. Non-http(s) schemes are skipped and
// fragments dropped; links are de-duplicated in document order.
//
// The next-page candidate is the first anchor carrying rel="next", falling
// back to the first anchor whose text looks like a next-page control.
func Extract(baseURL string, r io.Reader) (Extraction, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return Extraction{}, fmt.Errorf("parse html: %w", err)
	}

	var out Extraction
	seenLinks := make(map[string]struct{})
	seenImages := make(map[string]struct{})
	var nextByText string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if out.Title == "" {
					out.Title = strings.TrimSpace(textContent(n))
				}
			case "a":
				href := resolveRef(base, attrValue(n, "href"))
				if href != "" {
					if _, ok := seenLinks[href]; !ok {
						seenLinks[href] = struct{}{}
						out.Links = append(out.Links, href)
					}
					if out.NextURL == "" && hasRelNext(n) {
						out.NextURL = href
					}
					if nextByText == "" {
						text := strings.ToLower(strings.TrimSpace(textContent(n)))
						if _, ok := nextLinkTexts[text]; ok {
							nextByText = href
						}
					}
				}
			case "img":
				src := attrValue(n, "src")
				if src == "" {
					// Some listings use lazy-loading attrs.
					src = firstNonEmpty(attrValue(n, "data-src"), attrValue(n, "data-original"), attrValue(n, "data-lazy-src"))
				}
				if resolved := resolveRef(base, src); resolved != "" {
					if _, ok := seenImages[resolved]; !ok {
						seenImages[resolved] = struct{}{}
						out.Images = append(out.Images, resolved)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if out.NextURL == "" {
		out.NextURL = nextByText
	}
	return out, nil
}

// resolveRef resolves ref against base, keeping only http(s) URLs and
// dropping fragments.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	switch strings.ToLower(resolved.Scheme) {
	case "http", "https":
	default:
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

func hasRelNext(n *html.Node) bool {
	for _, field := range strings.Fields(attrValue(n, "rel")) {
		if strings.EqualFold(field, "next") {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
