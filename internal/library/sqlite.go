package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	status      TEXT NOT NULL CHECK (status IN ('want_to_read', 'currently_reading', 'finished')),
	rating      INTEGER,
	cover_url   TEXT,
	notes       TEXT,
	start_date  TEXT,
	finish_date TEXT,
	external_id TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT
)`

// sqliteTimeLayout is fixed-width so stored timestamps sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const bookColumns = `id, title, author, status, rating, cover_url, notes, start_date, finish_date, external_id, created_at, updated_at`

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the database at dbPath.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the CLI.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create books table: %w", err), closeErr)
	}

	return &SQLiteStore{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Add inserts a book.
func (s *SQLiteStore) Add(ctx context.Context, b *Book) error {
	if err := prepare(b, s.now()); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Author, string(b.Status),
		nullInt(b.Rating), nullString(b.CoverURL), nullString(b.Notes),
		nullString(b.StartDate), nullString(b.FinishDate), nullString(b.ExternalID),
		b.CreatedAt.UTC().Format(sqliteTimeLayout), nullTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

// Get returns the book with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanSQLiteBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns every book, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := []Book{}
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// UpdateStatus moves a book to status, stamping start/finish dates on
// first transition.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	now := s.now()
	start, finish := transitionDates(status, now)

	res, err := s.db.ExecContext(ctx,
		`UPDATE books
		    SET status = ?, updated_at = ?,
		        start_date = COALESCE(start_date, ?),
		        finish_date = COALESCE(finish_date, ?)
		  WHERE id = ?`,
		string(status), now.UTC().Format(sqliteTimeLayout), nullString(start), nullString(finish), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return requireOneRow(res)
}

// Remove deletes a book.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return requireOneRow(res)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBook(row rowScanner) (*Book, error) {
	var (
		b                                     Book
		status, createdAt                     string
		rating                                sql.NullInt64
		coverURL, notes, start, finish, extID sql.NullString
		updatedAt                             sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &status, &rating, &coverURL, &notes, &start, &finish, &extID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	b.Status = Status(status)
	if rating.Valid {
		r := int(rating.Int64)
		b.Rating = &r
	}
	b.CoverURL = stringPtr(coverURL)
	b.Notes = stringPtr(notes)
	b.StartDate = stringPtr(start)
	b.FinishDate = stringPtr(finish)
	b.ExternalID = stringPtr(extID)

	created, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	b.CreatedAt = created

	if updatedAt.Valid {
		updated, err := time.Parse(sqliteTimeLayout, updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at %q: %w", updatedAt.String, err)
		}
		b.UpdatedAt = &updated
	}

	return &b, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(sqliteTimeLayout), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
