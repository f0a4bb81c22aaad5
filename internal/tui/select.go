// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lepinkainen/bookscout/internal/debounce"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 16
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user left without choosing.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *openlibrary.BookResult
}

// Coordinator schedules debounced searches for the finder.
// *debounce.Coordinator satisfies it.
type Coordinator interface {
	TriggerSearch(query string, onResults debounce.ResultsFunc)
	Stop()
}

// resultsMsg carries the results of a search back into the program.
type resultsMsg struct {
	query   string
	results []openlibrary.BookResult
}

type bookItem struct {
	openlibrary.BookResult
}

func (i bookItem) Title() string {
	if i.FirstPublishYear != nil {
		return fmt.Sprintf("%s (%d)", i.BookResult.Title, *i.FirstPublishYear)
	}
	return i.BookResult.Title
}

func (i bookItem) FilterValue() string { return i.BookResult.Title }

func (i bookItem) Description() string { return i.Author }

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	titleStyle    lipgloss.Style
	authorStyle   lipgloss.Style
	metadataStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		authorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 5 }
func (d bookDelegate) Spacing() int                        { return 0 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	book, ok := item.(bookItem)
	if !ok {
		return
	}

	width := m.Width() - 4
	titleLine := d.styles.titleStyle.Render(truncate(book.Title(), width))
	authorLine := d.styles.authorStyle.Render(truncate(book.Author, width))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(book.BookResult, width))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, authorLine, metadataLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	input     textinput.Model
	list      list.Model
	coord     Coordinator
	inbox     chan resultsMsg
	done      chan struct{}
	closeOnce sync.Once
	lastQuery string
	searching bool
	result    SelectionResult
}

func newModel(coord Coordinator, initial string) *model {
	input := textinput.New()
	input.Placeholder = "Title, author or ISBN"
	input.Prompt = "> "
	input.CharLimit = 200
	input.Width = defaultListWidth - 4
	input.Focus()

	l := list.New(nil, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	m := &model{
		input: input,
		list:  l,
		coord: coord,
		inbox: make(chan resultsMsg, 1),
		done:  make(chan struct{}),
		result: SelectionResult{
			Action: ActionNone,
		},
	}

	if initial != "" {
		m.input.SetValue(initial)
		m.queryChanged()
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForResults(m.inbox, m.done))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsMsg:
		// Results for anything but the current input are stale.
		if msg.query == m.input.Value() {
			m.searching = false
			m.setResults(msg.results)
		}
		return m, waitForResults(m.inbox, m.done)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(bookItem); ok {
				result := selected.BookResult
				return m.finish(SelectionResult{Action: ActionSelected, Selection: &result})
			}
			return m, nil
		case "esc":
			return m.finish(SelectionResult{Action: ActionSkipped})
		case "ctrl+c":
			return m.finish(SelectionResult{Action: ActionStopped})
		case "up", "ctrl+p":
			m.list.CursorUp()
			return m, nil
		case "down", "ctrl+n":
			m.list.CursorDown()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != m.lastQuery {
			m.queryChanged()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-8, 5)
		m.list.SetSize(width, height)
		m.input.Width = width - 4
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render("Search Open Library")

	var body string
	switch {
	case len(m.list.Items()) > 0:
		body = m.list.View()
	case m.searching:
		body = statusStyle.Render("Searching...")
	case strings.TrimSpace(m.input.Value()) != "":
		body = statusStyle.Render("No results")
	default:
		body = statusStyle.Render("Start typing to search")
	}

	help := helpStyle.Render("Type to search | Up/Down navigate | Enter select | Esc skip | Ctrl+C stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.input.View(), body, help)
}

// queryChanged hands the current input to the coordinator. The coordinator
// cancels whatever it had scheduled for the previous input.
func (m *model) queryChanged() {
	query := m.input.Value()
	m.lastQuery = query
	m.searching = true
	m.coord.TriggerSearch(query, m.deliver(query))
}

// deliver returns a callback that posts results into the inbox. Only the
// newest undelivered message is kept.
func (m *model) deliver(query string) debounce.ResultsFunc {
	inbox, done := m.inbox, m.done
	return func(results []openlibrary.BookResult) {
		msg := resultsMsg{query: query, results: results}
		for {
			select {
			case <-done:
				return
			case inbox <- msg:
				return
			default:
			}
			select {
			case <-inbox:
			default:
			}
		}
	}
}

func (m *model) setResults(results []openlibrary.BookResult) {
	items := make([]list.Item, len(results))
	for i, result := range results {
		items[i] = bookItem{BookResult: result}
	}
	m.list.SetItems(items)
	m.list.Select(0)
}

func (m *model) finish(result SelectionResult) (tea.Model, tea.Cmd) {
	m.result = result
	m.coord.Stop()
	m.closeOnce.Do(func() { close(m.done) })
	return m, tea.Quit
}

func waitForResults(inbox <-chan resultsMsg, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-inbox:
			return msg
		case <-done:
			return nil
		}
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("247")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Find runs an as-you-type search UI. Each edit goes through coord, so
// the network is only hit once typing pauses. initial pre-fills the input.
func Find(coord Coordinator, initial string) (SelectionResult, error) {
	m := newModel(coord, initial)
	finalModel, err := runProgram(m)
	if err != nil {
		coord.Stop()
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

// truncate collapses whitespace and cuts value to width terminal cells,
// never splitting a rune.
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// formatMetadata builds the ID | ISBN | pages line under each result.
func formatMetadata(result openlibrary.BookResult, availableWidth int) string {
	parts := []string{result.ExternalID}

	if result.ISBN != nil {
		parts = append(parts, "ISBN "+*result.ISBN)
	}
	if result.PageCount != nil && *result.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", *result.PageCount))
	}
	if result.CoverURL != nil {
		parts = append(parts, "cover")
	}

	metadata := strings.Join(parts, " | ")
	if availableWidth > 0 && runewidth.StringWidth(metadata) > availableWidth {
		metadata = truncate(metadata, availableWidth)
	}
	return metadata
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
