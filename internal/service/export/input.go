package export

import (
	"strings"
	"time"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const dateLayout = "2006-01-02"

var contentTypes = map[domain.ExportFormat]string{
	domain.ExportFormatCSV:      "text/csv; charset=utf-8",
	domain.ExportFormatJSON:     "application/json",
	domain.ExportFormatMarkdown: "text/markdown; charset=utf-8",
	domain.ExportFormatText:     "text/plain; charset=utf-8",
}

var extensions = map[domain.ExportFormat]string{
	domain.ExportFormatCSV:      "csv",
	domain.ExportFormatJSON:     "json",
	domain.ExportFormatMarkdown: "md",
	domain.ExportFormatText:     "txt",
}

// Input holds the raw query parameters of an export request.
type Input struct {
	Format string
	Type   string
	Book   string
	From   string
	To     string
}

// Result is a rendered export ready to be served as an attachment.
type Result struct {
	Body        []byte
	ContentType string
	Filename    string
	Count       int
}

type request struct {
	format domain.ExportFormat
	filter domain.ExportFilter
}

// parse validates the input. Format defaults to csv and type to all.
func (i Input) parse() (request, error) {
	var errs []domain.FieldError
	req := request{
		format: domain.ExportFormat(strings.ToLower(strings.TrimSpace(i.Format))),
		filter: domain.ExportFilter{Scope: domain.ExportScope(strings.ToLower(strings.TrimSpace(i.Type)))},
	}
	if req.format == "" {
		req.format = domain.ExportFormatCSV
	}
	if req.filter.Scope == "" {
		req.filter.Scope = domain.ExportScopeAll
	}

	if !req.format.IsValid() {
		errs = append(errs, domain.FieldError{Field: "format", Message: "must be csv, json, markdown or txt"})
	}

	switch req.filter.Scope {
	case domain.ExportScopeAll:
	case domain.ExportScopeBook:
		req.filter.Book = strings.TrimSpace(i.Book)
		if req.filter.Book == "" {
			errs = append(errs, domain.FieldError{Field: "book", Message: "required when type is book"})
		}
	case domain.ExportScopeDate:
		var ok bool
		if req.filter.From, ok = parseDate(i.From); !ok {
			errs = append(errs, domain.FieldError{Field: "from", Message: "must be YYYY-MM-DD"})
		}
		if req.filter.To, ok = parseDate(i.To); !ok {
			errs = append(errs, domain.FieldError{Field: "to", Message: "must be YYYY-MM-DD"})
		}
		if req.filter.From != nil && req.filter.To != nil && req.filter.To.Before(*req.filter.From) {
			errs = append(errs, domain.FieldError{Field: "to", Message: "must not be before from"})
		}
	default:
		errs = append(errs, domain.FieldError{Field: "type", Message: "must be all, book or date"})
	}

	if len(errs) > 0 {
		return request{}, domain.NewValidationErrors(errs)
	}
	return req, nil
}

// parseDate parses an optional day. Empty input is a valid open bound.
func parseDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
