package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Search runs a free-text query and reports how it ended. limit bounds the
// number of documents requested; values below one mean DefaultLimit.
func (c *Client) Search(ctx context.Context, query string, limit int) Outcome[[]BookResult] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp SearchResponse
	if err := c.getJSON(ctx, c.searchURL(params), &resp); err != nil {
		return failed[[]BookResult](fmt.Errorf("search %q: %w", query, err))
	}

	results := make([]BookResult, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		results = append(results, TransformRecord(doc, c.covers))
	}

	if len(results) == 0 {
		return noMatch(results)
	}
	return matched(results)
}

// SearchByQuery is the fail-closed form of Search: any failure is logged
// and reported as an empty, non-nil slice.
func (c *Client) SearchByQuery(ctx context.Context, query string, limit int) []BookResult {
	outcome := c.Search(ctx, query, limit)
	if outcome.Failed() {
		c.logger.Warn("Open Library search failed", "op", "search", "query", query, "error", outcome.Err)
		return []BookResult{}
	}
	return outcome.Value
}

// LookupISBN finds the first search document matching an ISBN exactly.
func (c *Client) LookupISBN(ctx context.Context, isbn string) Outcome[*BookResult] {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return failed[*BookResult](ErrEmptyIdentifier)
	}

	params := url.Values{}
	params.Set("isbn", isbn)
	params.Set("limit", "1")

	var resp SearchResponse
	if err := c.getJSON(ctx, c.searchURL(params), &resp); err != nil {
		return failed[*BookResult](fmt.Errorf("isbn %s: %w", isbn, err))
	}

	if len(resp.Docs) == 0 {
		return noMatch[*BookResult](nil)
	}

	result := TransformRecord(resp.Docs[0], c.covers)
	return matched(&result)
}

// SearchByISBN is the fail-closed form of LookupISBN. A nil result means
// either no match or a failed request; the two are not distinguished.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) *BookResult {
	outcome := c.LookupISBN(ctx, isbn)
	if outcome.Failed() {
		c.logger.Warn("Open Library ISBN lookup failed", "op", "isbn", "isbn", isbn, "error", outcome.Err)
		return nil
	}
	return outcome.Value
}

func (c *Client) searchURL(params url.Values) string {
	return c.baseURL + "/search.json?" + params.Encode()
}
