// Package library stores the user's curated reading list. It consumes
// normalized lookup results but is never written to by the lookup client.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

// ErrNotFound is returned when no book has the requested ID.
var ErrNotFound = errors.New("book not found")

// Status is a book's place on the reading list.
type Status string

const (
	StatusWantToRead       Status = "want_to_read"
	StatusCurrentlyReading Status = "currently_reading"
	StatusFinished         Status = "finished"
)

// Statuses lists every valid Status.
var Statuses = []Status{StatusWantToRead, StatusCurrentlyReading, StatusFinished}

// ParseStatus accepts the canonical names plus a few spellings users type
// ("reading", "read", "want-to-read").
func ParseStatus(s string) (Status, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "want_to_read", "want", "to_read":
		return StatusWantToRead, nil
	case "currently_reading", "reading":
		return StatusCurrentlyReading, nil
	case "finished", "read", "done":
		return StatusFinished, nil
	}
	return "", fmt.Errorf("invalid status %q (want one of want_to_read, currently_reading, finished)", s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Book is one row of the reading list.
type Book struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	Author     string     `json:"author" yaml:"author"`
	Status     Status     `json:"status" yaml:"status"`
	Rating     *int       `json:"rating,omitempty" yaml:"rating,omitempty"`
	CoverURL   *string    `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Notes      *string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	StartDate  *string    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	FinishDate *string    `json:"finish_date,omitempty" yaml:"finish_date,omitempty"`
	ExternalID *string    `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Store persists reading-list books.
type Store interface {
	// Add inserts b, assigning ID and CreatedAt when they are unset.
	Add(ctx context.Context, b *Book) error
	Get(ctx context.Context, id string) (*Book, error)
	// List returns all books, most recently added first.
	List(ctx context.Context) ([]Book, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Remove(ctx context.Context, id string) error
	Close() error
}

// FromResult builds a reading-list entry from a lookup result.
func FromResult(r openlibrary.BookResult, status Status) Book {
	b := Book{
		Title:    r.Title,
		Author:   r.Author,
		Status:   status,
		CoverURL: r.CoverURL,
	}
	if r.ExternalID != "" {
		id := r.ExternalID
		b.ExternalID = &id
	}
	return b
}

// Open returns the store for driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres", "postgresql", "pgx":
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown library driver %q", driver)
}

// prepare validates b and fills the fields a store assigns on insert.
func prepare(b *Book, now time.Time) error {
	if strings.TrimSpace(b.Title) == "" {
		return errors.New("book title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		b.Author = openlibrary.DefaultAuthor
	}
	if b.Status == "" {
		b.Status = StatusWantToRead
	}
	if !b.Status.Valid() {
		return fmt.Errorf("invalid status %q", b.Status)
	}
	if b.Rating != nil && (*b.Rating < 1 || *b.Rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", *b.Rating)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}

	start, finish := transitionDates(b.Status, now)
	if b.StartDate == nil {
		b.StartDate = start
	}
	if b.FinishDate == nil {
		b.FinishDate = finish
	}
	return nil
}

// transitionDates stamps StartDate/FinishDate the first time a book is added
// as, or moves into, reading or finished.
func transitionDates(status Status, now time.Time) (start, finish *string) {
	day := now.UTC().Format(time.DateOnly)
	switch status {
	case StatusCurrentlyReading:
		return &day, nil
	case StatusFinished:
		return nil, &day
	}
	return nil, nil
}
