package export

import (
	"strconv"
	"strings"
)

const bom = "\uFEFF"

var csvHeader = []string{"Content", "Book Title", "Author", "Publisher", "Page", "Likes", "Public", "Created At"}

// renderCSV writes RFC 4180 rows with every field quoted, prefixed with a
// BOM so spreadsheet applications detect UTF-8.
func renderCSV(doc document) []byte {
	var b strings.Builder
	b.WriteString(bom)
	writeCSVRow(&b, csvHeader)

	for _, s := range doc.sentences {
		page := ""
		if s.PageNumber != nil {
			page = strconv.Itoa(*s.PageNumber)
		}
		public := "No"
		if s.IsPublic.IsPublic() {
			public = "Yes"
		}
		writeCSVRow(&b, []string{
			s.Content,
			deref(s.BookTitle),
			deref(s.Author),
			deref(s.Publisher),
			page,
			strconv.Itoa(s.Likes),
			public,
			s.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}
