package library

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var postgresMigrations embed.FS

const postgresMigrationsDir = "migrations"

// PostgresStore implements Store on a Postgres books table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to dsn and applies pending schema migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := migratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// migratePostgres runs the embedded goose migrations against pool.
func migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(postgresMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, postgresMigrationsDir); err != nil {
		return fmt.Errorf("failed to migrate books schema: %w", err)
	}
	return nil
}

// Add inserts a book.
func (s *PostgresStore) Add(ctx context.Context, b *Book) error {
	if err := prepare(b, s.now()); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Title, b.Author, string(b.Status),
		b.Rating, b.CoverURL, b.Notes, b.StartDate, b.FinishDate, b.ExternalID,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

// Get returns the book with the given ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Book, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	b, err := scanPostgresBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns every book, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Book, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanPostgresBook(rows)
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
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	now := s.now().UTC()
	start, finish := transitionDates(status, now)

	tag, err := s.pool.Exec(ctx,
		`UPDATE books
		    SET status = $1, updated_at = $2,
		        start_date = COALESCE(start_date, $3),
		        finish_date = COALESCE(finish_date, $4)
		  WHERE id = $5`,
		string(status), now, start, finish, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a book.
func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresBook(row pgx.Row) (*Book, error) {
	var (
		b      Book
		status string
		rating *int32
	)
	err := row.Scan(&b.ID, &b.Title, &b.Author, &status, &rating, &b.CoverURL, &b.Notes,
		&b.StartDate, &b.FinishDate, &b.ExternalID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	b.Status = Status(status)
	if rating != nil {
		r := int(*rating)
		b.Rating = &r
	}
	return &b, nil
}
