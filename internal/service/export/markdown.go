package export

import (
	"fmt"
	"strings"
)

func renderMarkdown(doc document) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s's Sentence Collection\n\n", doc.nickname)
	fmt.Fprintf(&b, "- Exported: %s\n", doc.at.Format(dateLayout))
	fmt.Fprintf(&b, "- Sentences: %d\n", len(doc.sentences))

	for _, g := range groupByBook(doc.sentences) {
		fmt.Fprintf(&b, "\n## %s\n", g.heading())
		if g.author != "" {
			fmt.Fprintf(&b, "\n*%s*\n", g.author)
		}
		for _, s := range g.sentences {
			b.WriteString("\n")
			for _, line := range strings.Split(s.Content, "\n") {
				b.WriteString("> ")
				b.WriteString(line)
				b.WriteString("\n")
			}
			if s.PageNumber != nil {
				fmt.Fprintf(&b, ">\n> — p. %d\n", *s.PageNumber)
			}
		}
	}
	return []byte(b.String())
}
