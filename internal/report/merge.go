// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"regexp"
	"strings"
	"unicode"
)

// dateHeading matches a date section heading at the start of a line. Text
// after the date on the same line is allowed.
var dateHeading = regexp.MustCompile(`^##[ \t]*(\d{4}-\d{2}-\d{2})`)

// Section locates one date section inside a document. Start is the offset
// of the heading line; End is the offset just past the section's last line
// (excluding the newline before the next heading) or the document length.
type Section struct {
	Date  string
	Start int
	End   int
}

// isBoundary reports whether line ends a date section: "##" followed by
// whitespace. Deeper headings such as "###" do not end a section, and
// neither does a "##2025-01-02" heading written without a space.
func isBoundary(line string) bool {
	if !strings.HasPrefix(line, "##") {
		return false
	}
	rest := line[2:]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r'
}

// Sections returns the date sections of doc in document order.
func Sections(doc string) []Section {
	var (
		sections []Section
		current  *Section
	)

	offset := 0
	for offset <= len(doc) {
		lineEnd := strings.IndexByte(doc[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = doc[offset:]
		} else {
			line = doc[offset : offset+lineEnd]
		}

		if current != nil && isBoundary(line) && offset > current.Start {
			current.End = offset - 1
			sections = append(sections, *current)
			current = nil
		}
		if current == nil {
			if m := dateHeading.FindStringSubmatch(line); m != nil {
				current = &Section{Date: m[1], Start: offset}
			}
		}

		if lineEnd < 0 {
			break
		}
		offset += lineEnd + 1
	}

	if current != nil {
		current.End = len(doc)
		sections = append(sections, *current)
	}
	return sections
}

// Merge places body, a complete "## date" section, into doc:
//   - the first existing section for date is replaced;
//   - otherwise body goes before the first section dated after date;
//   - otherwise body is appended.
//
// Exactly one blank line separates body from its neighbours, and the result
// is trimmed to end in a single newline. Merging the same body twice
// gives the same document.
func Merge(doc, date, body string) string {
	sections := Sections(doc)

	for _, s := range sections {
		if s.Date == date {
			return splice(doc[:s.Start], body, doc[s.End:])
		}
	}
	for _, s := range sections {
		if s.Date > date {
			return splice(doc[:s.Start], body, doc[s.Start:])
		}
	}
	return finish(strings.TrimRightFunc(doc, unicode.IsSpace) + "\n\n" + body)
}

func splice(before, body, after string) string {
	var b strings.Builder
	if before = strings.TrimRight(before, "\n"); before != "" {
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimRight(body, "\n"))
	if after = strings.TrimLeft(after, "\n"); after != "" {
		b.WriteString("\n\n")
		b.WriteString(after)
	}
	return finish(b.String())
}

func finish(s string) string {
	return strings.TrimSpace(s) + "\n"
}
