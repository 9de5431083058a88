package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

const (
	textWidth = 70
	indent    = "  "
)

func renderText(doc document) []byte {
	var b strings.Builder
	border := strings.Repeat("═", textWidth)

	b.WriteString("╔" + border + "╗\n")
	for _, line := range []string{
		doc.nickname + "'s Sentence Collection",
		"Exported " + doc.at.Format(dateLayout) + fmt.Sprintf(" · %d sentences", len(doc.sentences)),
	} {
		b.WriteString("║" + center(line, textWidth) + "║\n")
	}
	b.WriteString("╚" + border + "╝\n")

	for _, g := range groupByBook(doc.sentences) {
		header := "■ " + g.heading()
		if g.author != "" {
			header += " (" + g.author + ")"
		}
		b.WriteString("\n" + header + "\n")
		b.WriteString(strings.Repeat("─", textWidth) + "\n")

		for _, s := range g.sentences {
			if s.PageNumber != nil {
				fmt.Fprintf(&b, "%s[p. %d]\n", indent, *s.PageNumber)
			}
			for _, line := range wrap(s.Content, textWidth-len(indent)) {
				b.WriteString(indent + line + "\n")
			}
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

// cellWidth is the number of terminal columns r occupies.
func cellWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func textCells(s string) int {
	n := 0
	for _, r := range s {
		n += cellWidth(r)
	}
	return n
}

func center(s string, w int) string {
	pad := w - textCells(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// wrap breaks text into lines of at most w columns at spaces. Words wider
// than w are split. Existing line breaks are kept.
func wrap(text string, w int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		cells := 0
		for _, word := range words {
			wc := textCells(word)
			if cells > 0 && cells+1+wc > w {
				lines = append(lines, line.String())
				line.Reset()
				cells = 0
			}
			for wc > w {
				head, rest := splitCells(word, w)
				lines = append(lines, head)
				word, wc = rest, textCells(rest)
			}
			if word == "" {
				continue
			}
			if cells > 0 {
				line.WriteByte(' ')
				cells++
			}
			line.WriteString(word)
			cells += wc
		}
		if cells > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}

// splitCells returns the longest prefix of s fitting in n columns and the rest.
func splitCells(s string, n int) (string, string) {
	used := 0
	for i, r := range s {
		used += cellWidth(r)
		if used > n {
			return s[:i], s[i:]
		}
	}
	return s, ""
}
