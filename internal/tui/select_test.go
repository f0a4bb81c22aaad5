package tui

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookscout/internal/debounce"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

type triggerCall struct {
	query     string
	onResults debounce.ResultsFunc
}

type fakeCoordinator struct {
	calls   []triggerCall
	stopped int
}

func (f *fakeCoordinator) TriggerSearch(query string, onResults debounce.ResultsFunc) {
	f.calls = append(f.calls, triggerCall{query: query, onResults: onResults})
}

func (f *fakeCoordinator) Stop() { f.stopped++ }

func (f *fakeCoordinator) last(t *testing.T) triggerCall {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// drain feeds the pending inbox message, if any, back into the model.
func drain(t *testing.T, m *model) {
	t.Helper()
	select {
	case msg := <-m.inbox:
		m.Update(msg)
	default:
		t.Fatal("expected a delivered results message")
	}
}

func books(titles ...string) []openlibrary.BookResult {
	out := make([]openlibrary.BookResult, len(titles))
	for i, title := range titles {
		out[i] = openlibrary.BookResult{ExternalID: "OL" + title, Title: title, Author: openlibrary.DefaultAuthor}
	}
	return out
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTypingTriggersSearchPerEdit(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")

	typeText(m, "dune")

	queries := make([]string, len(coord.calls))
	for i, c := range coord.calls {
		queries[i] = c.query
	}
	assert.Equal(t, []string{"d", "du", "dun", "dune"}, queries)
	assert.True(t, m.searching)
}

func TestNavigationKeysDoNotTriggerSearch(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "dune")
	require.Len(t, coord.calls, 1)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})

	assert.Len(t, coord.calls, 1)
}

func TestResultsForCurrentInputPopulateList(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")
	typeText(m, "du")

	coord.last(t).onResults(books("Dune", "Dune Messiah"))
	drain(t, m)

	assert.False(t, m.searching)
	assert.Len(t, m.list.Items(), 2)
	assert.Contains(t, m.View(), "Dune Messiah")
}

func TestStaleResultsAreIgnored(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")
	typeText(m, "du")
	stale := coord.calls[len(coord.calls)-1]
	typeText(m, "n")

	stale.onResults(books("Dumas"))
	drain(t, m)

	assert.Empty(t, m.list.Items())
	assert.True(t, m.searching)
}

func TestDeliverKeepsNewestMessage(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")

	m.deliver("a")(books("First"))
	m.deliver("ab")(books("Second"))

	msg := <-m.inbox
	assert.Equal(t, "ab", msg.query)
	assert.Equal(t, "Second", msg.results[0].Title)
}

func TestDeliverAfterFinishIsDropped(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	m.deliver("late")(books("Late"))
	m.deliver("later")(books("Later"))

	assert.Equal(t, 1, coord.stopped)
}

func TestEnterSelectsHighlightedResult(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "dune")
	coord.last(t).onResults(books("Dune", "Dune Messiah"))
	drain(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, isQuit(cmd))
	assert.Equal(t, ActionSelected, m.result.Action)
	require.NotNil(t, m.result.Selection)
	assert.Equal(t, "Dune Messiah", m.result.Selection.Title)
	assert.Equal(t, 1, coord.stopped)
}

func TestEnterWithoutResultsDoesNothing(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, ActionNone, m.result.Action)
}

func TestEscAndCtrlC(t *testing.T) {
	tests := []struct {
		key  tea.KeyType
		want SelectionAction
	}{
		{tea.KeyEsc, ActionSkipped},
		{tea.KeyCtrlC, ActionStopped},
	}
	for _, tt := range tests {
		coord := &fakeCoordinator{}
		m := newModel(coord, "")
		_, cmd := m.Update(tea.KeyMsg{Type: tt.key})
		assert.True(t, isQuit(cmd))
		assert.Equal(t, tt.want, m.result.Action)
		assert.Equal(t, 1, coord.stopped)
	}
}

func TestViewStates(t *testing.T) {
	coord := &fakeCoordinator{}
	m := newModel(coord, "")
	assert.Contains(t, m.View(), "Start typing")

	typeText(m, "zz")
	assert.Contains(t, m.View(), "Searching...")

	coord.last(t).onResults([]openlibrary.BookResult{})
	drain(t, m)
	assert.Contains(t, m.View(), "No results")
}

func TestFindUsesProgramResult(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })

	coord := &fakeCoordinator{}
	runProgram = func(tm tea.Model) (tea.Model, error) {
		m := tm.(*model)
		assert.Equal(t, "dune", m.input.Value())
		coord.last(t).onResults(books("Dune"))
		drain(t, m)
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		return m, nil
	}

	result, err := Find(coord, "dune")
	require.NoError(t, err)
	assert.Equal(t, ActionSelected, result.Action)
	require.NotNil(t, result.Selection)
	assert.Equal(t, "Dune", result.Selection.Title)
}

func TestFindPropagatesProgramError(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })
	runProgram = func(tea.Model) (tea.Model, error) { return nil, errors.New("no tty") }

	coord := &fakeCoordinator{}
	_, err := Find(coord, "")
	require.Error(t, err)
	assert.Equal(t, 1, coord.stopped)
}

func TestFormatMetadata(t *testing.T) {
	isbn := "9780441013593"
	pages := 604
	got := formatMetadata(openlibrary.BookResult{ExternalID: "OL1W", ISBN: &isbn, PageCount: &pages}, 0)
	assert.Equal(t, "OL1W | ISBN 9780441013593 | 604 pages", got)
	assert.Equal(t, "OL1W | I...", formatMetadata(openlibrary.BookResult{ExternalID: "OL1W", ISBN: &isbn}, 11))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in    string
		width int
	}{
		{"Мастер и Маргарита", 10},
		{"三体三体三体", 8},
		{"Kalevala – Suomen kansan eepos", 12},
		{"Åsa", 2},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		assert.True(t, utf8.ValidString(got), "%q cut to invalid UTF-8 %q", tt.in, got)
		assert.LessOrEqual(t, runewidth.StringWidth(got), tt.width, tt.in)
	}

	assert.Equal(t, "Мастер ...", truncate("Мастер и Маргарита", 10))
	assert.True(t, strings.HasSuffix(truncate("三体三体三体", 8), "..."))
	assert.Equal(t, "Dune", truncate("  Dune  ", 10))
}
