package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/library"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
	"github.com/lepinkainen/bookscout/internal/render"
	"github.com/lepinkainen/bookscout/internal/tui"
)

// SearchCmd represents the search command
type SearchCmd struct {
	Query []string `arg:"" help:"Search terms"`
	Limit int      `short:"n" help:"Maximum number of results (defaults to search.limit)"`
}

// ISBNCmd represents the isbn command
type ISBNCmd struct {
	ISBN string `arg:"" help:"ISBN-10 or ISBN-13"`
}

// WorkCmd represents the work command
type WorkCmd struct {
	ID string `arg:"" help:"Work ID, e.g. OL893415W"`
}

// AuthorCmd represents the author command
type AuthorCmd struct {
	Key string `arg:"" help:"Author key, e.g. OL79034A"`
}

// CoverCmd represents the cover command
type CoverCmd struct {
	ID   string `arg:"" help:"Numeric cover ID, or an ISBN with --isbn"`
	ISBN bool   `help:"Treat the argument as an ISBN"`
	Size string `short:"s" help:"Image size: S, M or L" default:"M"`
}

// FindCmd represents the interactive find command
type FindCmd struct {
	Query []string `arg:"" optional:"" help:"Initial search text"`
	Add   string   `help:"Add the chosen book to the library with this status"`
}

func (s *SearchCmd) Run(app *App) error {
	query := strings.Join(s.Query, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query is required")
	}

	limit := s.Limit
	if limit <= 0 {
		limit = app.Config.Search.Limit
	}

	results := app.Client.SearchByQuery(app.ctx, query, limit)
	return render.Results(app.Out, app.Format, results)
}

func (i *ISBNCmd) Run(app *App) error {
	return render.Result(app.Out, app.Format, app.Client.SearchByISBN(app.ctx, i.ISBN))
}

func (w *WorkCmd) Run(app *App) error {
	return render.Result(app.Out, app.Format, app.Client.GetWorkDetail(app.ctx, w.ID))
}

func (a *AuthorCmd) Run(app *App) error {
	return render.Author(app.Out, app.Format, app.Client.GetAuthor(app.ctx, a.Key))
}

func (c *CoverCmd) Run(app *App) error {
	size, err := openlibrary.ParseCoverSize(c.Size)
	if err != nil {
		return err
	}

	covers := app.Client.Covers()
	var url string
	if c.ISBN {
		url = covers.ByISBN(strings.TrimSpace(c.ID), size)
	} else {
		id, err := strconv.ParseInt(strings.TrimSpace(c.ID), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("cover ID must be a positive integer, got %q", c.ID)
		}
		url = covers.ByID(id, size)
	}

	if app.Format != render.FormatText {
		return render.Encode(app.Out, app.Format, map[string]string{"url": url})
	}
	_, err = fmt.Fprintln(app.Out, url)
	return err
}

func (f *FindCmd) Run(app *App) error {
	var status library.Status
	if f.Add != "" {
		parsed, err := library.ParseStatus(f.Add)
		if err != nil {
			return err
		}
		status = parsed
	}

	coord := app.newCoordinator()
	defer coord.Stop()

	selection, err := findBook(coord, strings.Join(f.Query, " "))
	if err != nil {
		return fmt.Errorf("interactive search failed: %w", err)
	}

	switch selection.Action {
	case tui.ActionStopped:
		return errors.NewStopProcessingError("search stopped by user")
	case tui.ActionSelected:
	default:
		slog.Info("No book selected")
		return nil
	}

	result := withWorkDetail(app, *selection.Selection)
	if status == "" {
		return render.Result(app.Out, app.Format, &result)
	}

	book := library.FromResult(result, status)
	return addBook(app, &book)
}

// withWorkDetail fills the description of a search hit from its work record.
// The search payload never carries one.
func withWorkDetail(app *App, result openlibrary.BookResult) openlibrary.BookResult {
	if result.ExternalID == "" {
		return result
	}
	detail := app.Client.GetWorkDetail(app.ctx, result.ExternalID)
	if detail == nil {
		return result
	}
	result.Description = detail.Description
	if result.CoverURL == nil {
		result.CoverURL = detail.CoverURL
	}
	return result
}
