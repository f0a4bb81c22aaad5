package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookscout/internal/library"
	"github.com/lepinkainen/bookscout/internal/openlibrary"
)

func sampleResults() []openlibrary.BookResult {
	year := 1965
	cover := "https://covers.openlibrary.org/b/id/258027-M.jpg"
	return []openlibrary.BookResult{
		{ExternalID: "OL893415W", Title: "Dune", Author: "Frank Herbert", FirstPublishYear: &year, CoverURL: &cover},
		{ExternalID: "OL1W", Title: "Untitled", Author: openlibrary.DefaultAuthor},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestResultsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatText, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "OL893415W")
	assert.Contains(t, out, "Frank Herbert")
	assert.Contains(t, out, "1965")
	assert.Contains(t, out, "Unknown Author")

	buf.Reset()
	require.NoError(t, Results(&buf, FormatText, nil))
	assert.Equal(t, "No results.\n", buf.String())
}

func TestResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatJSON, sampleResults()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "OL893415W", decoded[0]["externalId"])
	assert.NotContains(t, decoded[1], "coverUrl")

	buf.Reset()
	require.NoError(t, Results(&buf, FormatJSON, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestResultsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Results(&buf, FormatYAML, sampleResults()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Dune", decoded[0]["title"])
	assert.Equal(t, 1965, decoded[0]["firstPublishYear"])
}

func TestResultText(t *testing.T) {
	desc := "A desert planet..."
	r := sampleResults()[0]
	r.Description = &desc

	var buf bytes.Buffer
	require.NoError(t, Result(&buf, FormatText, &r))
	assert.Contains(t, buf.String(), "Title:")
	assert.Contains(t, buf.String(), "A desert planet...")
	assert.NotContains(t, buf.String(), "ISBN:")

	buf.Reset()
	require.NoError(t, Result(&buf, FormatText, nil))
	assert.Equal(t, "No result.\n", buf.String())

	buf.Reset()
	require.NoError(t, Result(&buf, FormatJSON, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestAuthorText(t *testing.T) {
	bio := "American author."
	var buf bytes.Buffer
	require.NoError(t, Author(&buf, FormatText, &openlibrary.Author{Key: "OL79034A", Name: "Frank Herbert", Bio: &bio}))
	assert.Contains(t, buf.String(), "Frank Herbert")
	assert.Contains(t, buf.String(), "American author.")
}

func TestBooks(t *testing.T) {
	rating := 4
	books := []library.Book{{ID: "abc", Title: "Dune", Author: "Frank Herbert", Status: library.StatusFinished, Rating: &rating}}

	var buf bytes.Buffer
	require.NoError(t, Books(&buf, FormatText, books))
	assert.Contains(t, buf.String(), "finished")
	assert.Contains(t, buf.String(), "Dune")

	buf.Reset()
	require.NoError(t, Books(&buf, FormatText, nil))
	assert.Equal(t, "Library is empty.\n", buf.String())

	buf.Reset()
	require.NoError(t, Books(&buf, FormatYAML, books))
	assert.Contains(t, buf.String(), "status: finished")
}

func TestEncodeRejectsText(t *testing.T) {
	require.Error(t, Encode(&bytes.Buffer{}, FormatText, 1))
}
