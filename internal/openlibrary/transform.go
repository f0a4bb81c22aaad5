package openlibrary

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// publishDateLayouts covers the date shapes Open Library editors use most.
// Anything else goes through dateparse.
var publishDateLayouts = []string{
	"2006",
	"2006-01-02",
	"2006-01",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// TransformRecord maps one search document to a BookResult. Description is
// always nil on this path; it only comes from the work endpoint.
// Cover IDs of zero or below (the provider's -1 placeholder) yield no CoverURL.
func TransformRecord(rec RawRecord, covers CoverResolver) BookResult {
	result := BookResult{
		ExternalID:       StripKeyPrefix(rec.Key),
		Title:            rec.Title,
		Author:           DefaultAuthor,
		FirstPublishYear: rec.FirstPublishYear,
		PageCount:        rec.PageCount,
	}

	if len(rec.AuthorName) > 0 && rec.AuthorName[0] != "" {
		result.Author = rec.AuthorName[0]
	}

	if rec.CoverID != nil && *rec.CoverID > 0 {
		coverURL := covers.ByID(*rec.CoverID, CoverMedium)
		result.CoverURL = &coverURL
	}

	if len(rec.ISBN) > 0 && rec.ISBN[0] != "" {
		isbn := rec.ISBN[0]
		result.ISBN = &isbn
	}

	return result
}

// TransformWork maps a work payload to a BookResult. The work endpoint
// carries author keys but no names, so Author is always DefaultAuthor.
func TransformWork(workID string, work WorkDetail, covers CoverResolver) BookResult {
	result := BookResult{
		ExternalID:  StripKeyPrefix(workID),
		Title:       work.Title,
		Author:      DefaultAuthor,
		Description: ExtractDescription(work.Description),
	}

	if len(work.Covers) > 0 && work.Covers[0] > 0 {
		coverURL := covers.ByID(work.Covers[0], CoverMedium)
		result.CoverURL = &coverURL
	}

	if year, ok := ParsePublishYear(work.FirstPublishDate); ok {
		result.FirstPublishYear = &year
	}

	return result
}

// ExtractDescription returns the text of a description in either of its
// encodings, or nil when there is none.
func ExtractDescription(desc *TextValue) *string {
	if desc == nil || desc.Value == "" {
		return nil
	}
	value := desc.Value
	return &value
}

// ParsePublishYear extracts the year from a free-form publish date. The
// year must be positive and written out as four digits in date, so
// yearless dates and bare timestamps report no year.
func ParsePublishYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}

	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return checkedYear(date, t.Year())
		}
	}

	t, err := dateparse.ParseAny(date)
	if err != nil {
		return 0, false
	}
	return checkedYear(date, t.Year())
}

func checkedYear(date string, year int) (int, bool) {
	if year <= 0 || !hasDigitRun(date, strconv.Itoa(year)) {
		return 0, false
	}
	return year, true
}

// hasDigitRun reports whether want, a four-digit number, appears in s as a
// complete run of digits.
func hasDigitRun(s, want string) bool {
	if len(want) != 4 {
		return false
	}
	for _, run := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) {
		if run == want {
			return true
		}
	}
	return false
}

// StripKeyPrefix removes a leading namespace such as "/works/" or "/books/"
// from a provider key. Bare identifiers are returned unchanged.
func StripKeyPrefix(key string) string {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, "/") {
		return key
	}
	return key[strings.LastIndex(key, "/")+1:]
}
