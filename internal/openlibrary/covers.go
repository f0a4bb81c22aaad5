package openlibrary

import (
	"fmt"
	"strings"
)

// DefaultCoversURL is the root of the Open Library covers service.
const DefaultCoversURL = "https://covers.openlibrary.org"

// CoverSize selects one of the three image sizes the covers service offers.
// The zero value is CoverMedium.
type CoverSize int

const (
	CoverMedium CoverSize = iota
	CoverSmall
	CoverLarge
)

// String returns the size letter used in cover URLs.
func (s CoverSize) String() string {
	switch s {
	case CoverSmall:
		return "S"
	case CoverLarge:
		return "L"
	default:
		return "M"
	}
}

// ParseCoverSize accepts S/M/L or small/medium/large in any case.
// An empty string selects CoverMedium.
func ParseCoverSize(s string) (CoverSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m", "medium":
		return CoverMedium, nil
	case "s", "small":
		return CoverSmall, nil
	case "l", "large":
		return CoverLarge, nil
	}
	return CoverMedium, fmt.Errorf("invalid cover size %q (want S, M or L)", s)
}

// CoverResolver builds cover and author-photo URLs. It never performs I/O
// and never validates that the image exists upstream.
type CoverResolver struct {
	baseURL string
}

// NewCoverResolver returns a resolver rooted at baseURL, or at
// DefaultCoversURL when baseURL is empty.
func NewCoverResolver(baseURL string) CoverResolver {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultCoversURL
	}
	return CoverResolver{baseURL: baseURL}
}

// BaseURL returns the book covers base, {covers}/b.
func (r CoverResolver) BaseURL() string {
	return r.root() + "/b"
}

// ByID returns {covers}/b/id/{coverID}-{size}.jpg.
func (r CoverResolver) ByID(coverID int64, size CoverSize) string {
	return fmt.Sprintf("%s/id/%d-%s.jpg", r.BaseURL(), coverID, size)
}

// ByISBN returns {covers}/b/isbn/{isbn}-{size}.jpg.
func (r CoverResolver) ByISBN(isbn string, size CoverSize) string {
	return fmt.Sprintf("%s/isbn/%s-%s.jpg", r.BaseURL(), isbn, size)
}

// AuthorPhoto returns {covers}/a/id/{photoID}-{size}.jpg.
func (r CoverResolver) AuthorPhoto(photoID int64, size CoverSize) string {
	return fmt.Sprintf("%s/a/id/%d-%s.jpg", r.root(), photoID, size)
}

func (r CoverResolver) root() string {
	if r.baseURL == "" {
		return DefaultCoversURL
	}
	return r.baseURL
}

var defaultCovers = NewCoverResolver(DefaultCoversURL)

// CoverURL resolves a cover ID against the public covers service.
func CoverURL(coverID int64, size CoverSize) string {
	return defaultCovers.ByID(coverID, size)
}

// CoverURLByISBN resolves an ISBN against the public covers service.
func CoverURLByISBN(isbn string, size CoverSize) string {
	return defaultCovers.ByISBN(isbn, size)
}
