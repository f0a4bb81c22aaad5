package openlibrary

import (
	"context"
	"fmt"
	"net/url"
)

// FetchWork loads a single work by its catalog identifier ("OL45883W" or
// "/works/OL45883W").
func (c *Client) FetchWork(ctx context.Context, workID string) Outcome[*BookResult] {
	id := StripKeyPrefix(workID)
	if id == "" {
		return failed[*BookResult](ErrEmptyIdentifier)
	}

	var work WorkDetail
	endpoint := fmt.Sprintf("%s/works/%s.json", c.baseURL, url.PathEscape(id))
	if err := c.getJSON(ctx, endpoint, &work); err != nil {
		return failed[*BookResult](fmt.Errorf("work %s: %w", id, err))
	}

	result := TransformWork(id, work, c.covers)
	return matched(&result)
}

// GetWorkDetail is the fail-closed form of FetchWork. The returned Author
// is always DefaultAuthor because the work endpoint omits author names.
func (c *Client) GetWorkDetail(ctx context.Context, workID string) *BookResult {
	outcome := c.FetchWork(ctx, workID)
	if outcome.Failed() {
		c.logger.Warn("Open Library work lookup failed", "op", "work", "work", workID, "error", outcome.Err)
		return nil
	}
	return outcome.Value
}
