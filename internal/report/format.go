// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

var htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// ArxivPrefix returns "[arXivYYMM]" for day.
func ArxivPrefix(day time.Time) string {
	return fmt.Sprintf("[arXiv%02d%02d]", day.Year()%100, int(day.Month()))
}

// FormatTags renders the tag layers as "[tag1], [tag2], [a, b]", or "TBD"
// when every layer is empty.
func FormatTags(e types.Enrichment) string {
	var tags []string
	if e.Tag1 != "" {
		tags = append(tags, "["+e.Tag1+"]")
	}
	if e.Tag2 != "" {
		tags = append(tags, "["+e.Tag2+"]")
	}
	var tag3 []string
	for _, t := range e.Tag3 {
		if t = strings.TrimSpace(t); t != "" {
			tag3 = append(tag3, t)
		}
	}
	if len(tag3) > 0 {
		tags = append(tags, "["+strings.Join(tag3, ", ")+"]")
	}
	if len(tags) == 0 {
		return "TBD"
	}
	return strings.Join(tags, ", ")
}

// FormatEntry renders one paper as a Markdown list item followed by a blank
// line. The summary line is left out when the summary is empty; angle
// brackets in it are escaped so MDX renderers accept the page.
func FormatEntry(p types.EnrichedPaper, day time.Time) string {
	title := orDefault(p.Paper.Title, "N/A")
	link := orDefault(p.Paper.PDFLink, "N/A")
	institution := orDefault(p.Enrichment.Institution, "TBD")

	var b strings.Builder
	fmt.Fprintf(&b, "- **%s %s**\n", ArxivPrefix(day), title)
	fmt.Fprintf(&b, "  - **tags:** %s\n", FormatTags(p.Enrichment))
	fmt.Fprintf(&b, "  - **authors:** %s\n", strings.Join(p.Paper.Authors, ", "))
	fmt.Fprintf(&b, "  - **institution:** %s\n", institution)
	fmt.Fprintf(&b, "  - **link:** %s\n", link)
	if summary := strings.TrimSpace(p.Enrichment.Summary); summary != "" {
		fmt.Fprintf(&b, "  - **Simple LLM Summary:** %s\n", htmlEscaper.Replace(summary))
	}
	b.WriteString("\n")
	return b.String()
}

// SectionBody renders the "## YYYY-MM-DD" section for day holding papers in
// the given order.
func SectionBody(day time.Time, papers []types.EnrichedPaper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", day.Format(time.DateOnly))
	for _, p := range papers {
		b.WriteString(FormatEntry(p, day))
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
