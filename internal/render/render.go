// Package render writes lookup results and reading-list books for the CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookscout/internal/library"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml (yml); empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not a structured encoding", format)
}

// Results writes a list of lookup results.
func Results(w io.Writer, format Format, results []openlibrary.BookResult) error {
	if format != FormatText {
		if results == nil {
			results = []openlibrary.BookResult{}
		}
		return Encode(w, format, results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR")
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ExternalID, r.Title, r.Author, optInt(r.FirstPublishYear))
	}
	return tw.Flush()
}

// Result writes a single lookup result, or a not-found line when r is nil.
func Result(w io.Writer, format Format, r *openlibrary.BookResult) error {
	if format != FormatText {
		return Encode(w, format, r)
	}
	if r == nil {
		_, err := fmt.Fprintln(w, "No result.")
		return err
	}

	fields := [][2]string{
		{"ID", r.ExternalID},
		{"Title", r.Title},
		{"Author", r.Author},
		{"Year", optInt(r.FirstPublishYear)},
		{"ISBN", optString(r.ISBN)},
		{"Pages", optInt(r.PageCount)},
		{"Cover", optString(r.CoverURL)},
	}
	if err := writeFields(w, fields); err != nil {
		return err
	}
	if r.Description != nil {
		_, err := fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(*r.Description))
		return err
	}
	return nil
}

// Author writes an author record, or a not-found line when a is nil.
func Author(w io.Writer, format Format, a *openlibrary.Author) error {
	if format != FormatText {
		return Encode(w, format, a)
	}
	if a == nil {
		_, err := fmt.Fprintln(w, "No result.")
		return err
	}

	if err := writeFields(w, [][2]string{
		{"Key", a.Key},
		{"Name", a.Name},
		{"Born", optString(a.BirthDate)},
		{"Photo", optString(a.PhotoURL)},
	}); err != nil {
		return err
	}
	if a.Bio != nil {
		_, err := fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(*a.Bio))
		return err
	}
	return nil
}

// Books writes the reading list.
func Books(w io.Writer, format Format, books []library.Book) error {
	if format != FormatText {
		if books == nil {
			books = []library.Book{}
		}
		return Encode(w, format, books)
	}

	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "Library is empty.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tAUTHOR\tRATING")
	for _, b := range books {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Status, b.Title, b.Author, optInt(b.Rating))
	}
	return tw.Flush()
}

func writeFields(w io.Writer, fields [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	return tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
