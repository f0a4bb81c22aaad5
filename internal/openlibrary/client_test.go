package openlibrary

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bserrors "github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/ratelimit"
)

// newTestClient points a client at handler with pacing disabled and logs
// captured in the returned buffer.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := NewClient(
		WithBaseURL(server.URL),
		WithCoversURL("http://covers.test"),
		WithHTTPClient(server.Client()),
		WithRateLimiter(nil),
		WithUserAgent("bookscout-test"),
		WithLogger(logger),
	)
	return client, &logs
}

func TestSearchByQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lord of the rings", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Contains(t, r.URL.RawQuery, "q=lord+of+the+rings")
		assert.Equal(t, "bookscout-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"numFound":2,"start":0,"docs":[
			{"key":"/works/OL27448W","title":"The Lord of the Rings","author_name":["J.R.R. Tolkien"],"cover_i":14625765,"first_publish_year":1954},
			{"key":"/works/OL1W","title":"Untitled"}
		]}`))
	})
	client, _ := newTestClient(t, mux)

	results := client.SearchByQuery(context.Background(), "lord of the rings", 5)

	require.Len(t, results, 2)
	assert.Equal(t, "OL27448W", results[0].ExternalID)
	assert.Equal(t, "J.R.R. Tolkien", results[0].Author)
	require.NotNil(t, results[0].CoverURL)
	assert.Equal(t, "http://covers.test/b/id/14625765-M.jpg", *results[0].CoverURL)
	assert.Equal(t, DefaultAuthor, results[1].Author)
	assert.Nil(t, results[1].CoverURL)
}

func TestRequestLogNamesLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numFound":0,"start":0,"docs":[]}`))
	}))
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	client := NewClient(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(ratelimit.New("OpenLibrary", 100)),
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	client.SearchByQuery(context.Background(), "dune", 1)

	assert.Contains(t, logs.String(), "limiter=OpenLibrary")
}

func TestSearchDefaultLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"numFound":0,"start":0,"docs":[]}`))
	})
	client, _ := newTestClient(t, mux)

	outcome := client.Search(context.Background(), "dune", 0)

	assert.Equal(t, StatusNoMatch, outcome.Status)
	assert.NotNil(t, outcome.Value)
	assert.Empty(t, outcome.Value)
}

func TestSearchEscapesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c++ & go/rust?", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"docs":[]}`))
	})
	client, _ := newTestClient(t, mux)

	assert.Empty(t, client.SearchByQuery(context.Background(), "c++ & go/rust?", 3))
}

func TestSearchByQuery_ServerErrorFailsClosed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	client, logs := newTestClient(t, mux)

	results := client.SearchByQuery(context.Background(), "tolkien", 10)

	require.NotNil(t, results)
	assert.Empty(t, results)
	assert.Contains(t, logs.String(), "Open Library search failed")
	assert.Contains(t, logs.String(), "tolkien")

	outcome := client.Search(context.Background(), "tolkien", 10)
	assert.True(t, outcome.Failed())
	code, ok := bserrors.IsStatusError(outcome.Err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestSearch_MalformedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs": [`))
	})
	client, _ := newTestClient(t, mux)

	outcome := client.Search(context.Background(), "dune", 10)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrMalformedResponse)

	assert.Empty(t, client.SearchByQuery(context.Background(), "dune", 10))
}

func TestSearch_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client, _ := newTestClient(t, mux)

	outcome := client.Search(context.Background(), "dune", 10)
	assert.True(t, outcome.Failed())
	assert.True(t, bserrors.IsRateLimitError(outcome.Err))
	assert.Contains(t, outcome.Err.Error(), "retry after 30s")
}

func TestSearch_TransportFailure(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client := NewClient(WithBaseURL("http://"+addr), WithRateLimiter(nil), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	outcome := client.Search(context.Background(), "dune", 10)
	assert.ErrorIs(t, outcome.Err, ErrTransport)
	assert.Empty(t, client.SearchByQuery(context.Background(), "dune", 10))
	assert.Nil(t, client.SearchByISBN(context.Background(), "9780441013593"))
	assert.Nil(t, client.GetWorkDetail(context.Background(), "OL893415W"))
}

func TestSearch_CancelledContext(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := client.Search(ctx, "dune", 10)
	assert.True(t, outcome.Failed())
	assert.True(t, errors.Is(outcome.Err, context.Canceled))
}

func TestSearchByISBN(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("isbn") {
		case "9780441013593":
			assert.Equal(t, "", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"numFound":1,"start":0,"docs":[{"key":"/works/OL893415W","title":"Dune","author_name":["Frank Herbert"],"isbn":["9780441013593"],"number_of_pages_median":896}]}`))
		case "0000000000":
			_, _ = w.Write([]byte(`{"numFound":0,"start":0,"docs":[]}`))
		default:
			http.Error(w, "bad", http.StatusBadGateway)
		}
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	result := client.SearchByISBN(ctx, " 9780441013593 ")
	require.NotNil(t, result)
	assert.Equal(t, "OL893415W", result.ExternalID)
	assert.Equal(t, "Frank Herbert", result.Author)
	require.NotNil(t, result.ISBN)
	assert.Equal(t, "9780441013593", *result.ISBN)
	require.NotNil(t, result.PageCount)
	assert.Equal(t, 896, *result.PageCount)

	// no match and failure look the same to the fail-closed caller
	assert.Nil(t, client.SearchByISBN(ctx, "0000000000"))
	assert.Nil(t, client.SearchByISBN(ctx, "1111111111"))

	// but not to the explicit lookup
	assert.Equal(t, StatusNoMatch, client.LookupISBN(ctx, "0000000000").Status)
	assert.Equal(t, StatusFailed, client.LookupISBN(ctx, "1111111111").Status)
}

func TestLookupISBN_Empty(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())

	outcome := client.LookupISBN(context.Background(), "  ")
	assert.ErrorIs(t, outcome.Err, ErrEmptyIdentifier)
	assert.Nil(t, client.SearchByISBN(context.Background(), ""))
}

func TestGetWorkDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works/OL893415W.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"title":"Dune",
			"description":{"type":"/type/text","value":"A desert planet..."},
			"covers":[11481354],
			"authors":[{"author":{"key":"/authors/OL79034A"},"type":{"key":"/type/author_role"}}],
			"first_publish_date":"1965"
		}`))
	})
	mux.HandleFunc("/works/OL2W.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Bare","first_publish_date":"once upon a time"}`))
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	result := client.GetWorkDetail(ctx, "/works/OL893415W")
	require.NotNil(t, result)
	assert.Equal(t, "OL893415W", result.ExternalID)
	assert.Equal(t, DefaultAuthor, result.Author)
	require.NotNil(t, result.Description)
	assert.Equal(t, "A desert planet...", *result.Description)
	require.NotNil(t, result.CoverURL)
	assert.Equal(t, "http://covers.test/b/id/11481354-M.jpg", *result.CoverURL)
	require.NotNil(t, result.FirstPublishYear)
	assert.Equal(t, 1965, *result.FirstPublishYear)

	bare := client.GetWorkDetail(ctx, "OL2W")
	require.NotNil(t, bare)
	assert.Nil(t, bare.FirstPublishYear)
	assert.Nil(t, bare.Description)
	assert.Nil(t, bare.CoverURL)

	assert.Nil(t, client.GetWorkDetail(ctx, "OL404W"))
	assert.Nil(t, client.GetWorkDetail(ctx, ""))
}

func TestGetAuthor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/authors/OL79034A.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Frank Herbert","bio":"American science-fiction author.","birth_date":"8 October 1920","photos":[6257553]}`))
	})
	client, _ := newTestClient(t, mux)

	author := client.GetAuthor(context.Background(), "/authors/OL79034A")
	require.NotNil(t, author)
	assert.Equal(t, "OL79034A", author.Key)
	assert.Equal(t, "Frank Herbert", author.Name)
	require.NotNil(t, author.Bio)
	assert.Equal(t, "American science-fiction author.", *author.Bio)
	require.NotNil(t, author.BirthDate)
	assert.Equal(t, "8 October 1920", *author.BirthDate)
	require.NotNil(t, author.PhotoURL)
	assert.Equal(t, "http://covers.test/a/id/6257553-M.jpg", *author.PhotoURL)

	assert.Nil(t, client.GetAuthor(context.Background(), "OL0A"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "no_match", StatusNoMatch.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(99).String())
}
