package openlibrary

import (
	"encoding/json"
	"fmt"
)

// DefaultAuthor is used whenever the provider does not name an author.
const DefaultAuthor = "Unknown Author"

// SearchResponse matches the payload of /search.json.
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Start    int         `json:"start"`
	Docs     []RawRecord `json:"docs"`
}

// RawRecord is a single search document exactly as the provider sends it.
// Only Key and Title are reliably populated.
type RawRecord struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	ISBN             []string `json:"isbn,omitempty"`
	CoverID          *int64   `json:"cover_i,omitempty"`
	Publisher        []string `json:"publisher,omitempty"`
	PageCount        *int     `json:"number_of_pages_median,omitempty"`
	Subject          []string `json:"subject,omitempty"`
}

// WorkDetail matches the payload of /works/{id}.json.
type WorkDetail struct {
	Title            string       `json:"title"`
	Description      *TextValue   `json:"description,omitempty"`
	Covers           []int64      `json:"covers,omitempty"`
	Authors          []WorkAuthor `json:"authors,omitempty"`
	Subjects         []string     `json:"subjects,omitempty"`
	FirstPublishDate string       `json:"first_publish_date,omitempty"`
}

// WorkAuthor links a work to an author record. Only the key is provided,
// never the name.
type WorkAuthor struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// AuthorDetail matches the payload of /authors/{id}.json.
type AuthorDetail struct {
	Name      string     `json:"name"`
	Bio       *TextValue `json:"bio,omitempty"`
	BirthDate string     `json:"birth_date,omitempty"`
	Photos    []int64    `json:"photos,omitempty"`
}

// TextValue is a free-text field that the provider encodes either as a bare
// JSON string or as a typed object {"type": "/type/text", "value": "..."}.
// Both decode to the same Value.
type TextValue struct {
	Value string
}

// UnmarshalJSON accepts both encodings of a text field.
func (t *TextValue) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		t.Value = plain
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("text value is neither a string nor a value object: %w", err)
	}
	t.Value = wrapped.Value
	return nil
}

// MarshalJSON always emits the plain string form.
func (t TextValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

// BookResult is the normalized book shape handed to callers. Optional
// fields are nil when the provider did not supply a usable value.
type BookResult struct {
	ExternalID       string  `json:"externalId" yaml:"externalId"`
	Title            string  `json:"title" yaml:"title"`
	Author           string  `json:"author" yaml:"author"`
	CoverURL         *string `json:"coverUrl,omitempty" yaml:"coverUrl,omitempty"`
	FirstPublishYear *int    `json:"firstPublishYear,omitempty" yaml:"firstPublishYear,omitempty"`
	ISBN             *string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	PageCount        *int    `json:"pageCount,omitempty" yaml:"pageCount,omitempty"`
	Description      *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Author is the normalized author shape returned by GetAuthor.
type Author struct {
	Key       string  `json:"key" yaml:"key"`
	Name      string  `json:"name" yaml:"name"`
	Bio       *string `json:"bio,omitempty" yaml:"bio,omitempty"`
	BirthDate *string `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
	PhotoURL  *string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
}
