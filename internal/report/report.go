// Package report turns a completed session into a markdown report and
// delivers it through the configured outputs.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
)

// Markdown renders a session as a GFM report: one section per traversal with
// its page table, tracker summary and any errors recorded along the way.
func Markdown(session *core.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Walk report: %s\n\n", session.WalkID)
	fmt.Fprintf(&b, "Session `%s` started %s", session.ID, session.StartedAt.UTC().Format(time.RFC3339))
	if session.CompletedAt != nil {
		fmt.Fprintf(&b, ", completed %s", session.CompletedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, ". Status: **%s**.\n\n", session.Status)

	for _, traversal := range session.Traversals {
		writeTraversal(&b, traversal)
	}

	if len(session.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, walkErr := range session.Errors {
			fmt.Fprintf(&b, "- `%s/%s`: %s\n", walkErr.Component, walkErr.Stage, walkErr.Error)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeTraversal(b *strings.Builder, traversal *core.Traversal) {
	fmt.Fprintf(b, "## %s\n\n", traversal.SeedURL)

	if summary := traversal.Summary; summary != nil {
		fmt.Fprintf(b, "Visited %d pages, ended on page %d, ran for %s.",
			summary.PagesVisited, summary.CurrentPage, summary.Duration.Round(time.Millisecond))
		if summary.LastDetection != nil {
			fmt.Fprintf(b, " Pagination: %s (confidence %.2f).",
				summary.LastDetection.Type, summary.LastDetection.Confidence)
		}
		b.WriteString("\n\n")
	}

	if len(traversal.Pages) > 0 {
		b.WriteString("| Page | Title | Links | Images |\n")
		b.WriteString("| --- | --- | ---: | ---: |\n")
		for _, page := range traversal.Pages {
			fmt.Fprintf(b, "| [%d](%s) | %s | %d | %d |\n",
				page.Page, page.URL, tableCell(page.Title), len(page.Links), len(page.Images))
		}
		b.WriteString("\n")
	}

	images := collectImages(traversal)
	if len(images) > 0 {
		b.WriteString("### Images\n\n")
		for _, image := range images {
			fmt.Fprintf(b, "- `%s` <%s>\n", image.Filename, image.URL)
		}
		b.WriteString("\n")
	}
}

func collectImages(traversal *core.Traversal) []core.ImageRef {
	var out []core.ImageRef
	for _, page := range traversal.Pages {
		out = append(out, page.Images...)
	}
	return out
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}
