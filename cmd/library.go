package cmd

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/bookscout/internal/library"
	"github.com/lepinkainen/bookscout/internal/render"
)

// LibraryCmd groups the reading-library subcommands
type LibraryCmd struct {
	Add    LibraryAddCmd    `cmd:"" help:"Add a book from Open Library or by hand"`
	List   LibraryListCmd   `cmd:"" help:"List books in the library"`
	Status LibraryStatusCmd `cmd:"" help:"Change a book's reading status"`
	Remove LibraryRemoveCmd `cmd:"" help:"Remove a book from the library"`
}

// LibraryAddCmd represents the library add command
type LibraryAddCmd struct {
	Work   string `help:"Open Library work ID to add" xor:"source"`
	ISBN   string `name:"isbn" help:"ISBN to look up and add" xor:"source"`
	Title  string `help:"Title for a book added by hand" xor:"source"`
	Author string `help:"Author; overrides the looked-up author"`
	Status string `help:"Reading status (want_to_read, currently_reading, finished)" default:"want_to_read"`
	Rating int    `help:"Rating from 1 to 5"`
	Notes  string `help:"Free-form notes"`
}

// LibraryListCmd represents the library list command
type LibraryListCmd struct {
	Status string `help:"Only list books with this status"`
}

// LibraryStatusCmd represents the library status command
type LibraryStatusCmd struct {
	ID     string `arg:"" help:"Library book ID"`
	Status string `arg:"" help:"New reading status"`
}

// LibraryRemoveCmd represents the library remove command
type LibraryRemoveCmd struct {
	ID string `arg:"" help:"Library book ID"`
}

func (l *LibraryAddCmd) Run(app *App) error {
	status, err := library.ParseStatus(l.Status)
	if err != nil {
		return err
	}

	var book library.Book
	switch {
	case l.Work != "":
		result := app.Client.GetWorkDetail(app.ctx, l.Work)
		if result == nil {
			return fmt.Errorf("no work found for %q", l.Work)
		}
		book = library.FromResult(*result, status)
	case l.ISBN != "":
		result := app.Client.SearchByISBN(app.ctx, l.ISBN)
		if result == nil {
			return fmt.Errorf("no book found for ISBN %q", l.ISBN)
		}
		book = library.FromResult(*result, status)
	case strings.TrimSpace(l.Title) != "":
		book = library.Book{Title: strings.TrimSpace(l.Title), Status: status}
	default:
		return fmt.Errorf("one of --work, --isbn or --title is required")
	}

	if l.Author != "" {
		book.Author = l.Author
	}
	if l.Rating != 0 {
		rating := l.Rating
		book.Rating = &rating
	}
	if l.Notes != "" {
		notes := l.Notes
		book.Notes = &notes
	}

	return addBook(app, &book)
}

func (l *LibraryListCmd) Run(app *App) error {
	var filter library.Status
	if l.Status != "" {
		parsed, err := library.ParseStatus(l.Status)
		if err != nil {
			return err
		}
		filter = parsed
	}

	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	books, err := store.List(app.ctx)
	if err != nil {
		return err
	}

	if filter != "" {
		filtered := books[:0]
		for _, b := range books {
			if b.Status == filter {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	return render.Books(app.Out, app.Format, books)
}

func (l *LibraryStatusCmd) Run(app *App) error {
	status, err := library.ParseStatus(l.Status)
	if err != nil {
		return err
	}

	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateStatus(app.ctx, l.ID, status); err != nil {
		return fmt.Errorf("updating %s: %w", l.ID, err)
	}

	book, err := store.Get(app.ctx, l.ID)
	if err != nil {
		return err
	}
	return writeBook(app, book, "Updated")
}

func (l *LibraryRemoveCmd) Run(app *App) error {
	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Remove(app.ctx, l.ID); err != nil {
		return fmt.Errorf("removing %s: %w", l.ID, err)
	}
	if app.Format == render.FormatText {
		_, err = fmt.Fprintf(app.Out, "Removed %s\n", l.ID)
	}
	return err
}

func addBook(app *App, book *library.Book) error {
	store, err := app.openLibrary()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Add(app.ctx, book); err != nil {
		return fmt.Errorf("adding %q: %w", book.Title, err)
	}
	return writeBook(app, book, "Added")
}

func writeBook(app *App, book *library.Book, verb string) error {
	if app.Format != render.FormatText {
		return render.Encode(app.Out, app.Format, book)
	}
	_, err := fmt.Fprintf(app.Out, "%s %q by %s [%s] (%s)\n", verb, book.Title, book.Author, book.Status, book.ID)
	return err
}
