package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FetchAuthor loads an author record by key ("OL23919A" or "/authors/OL23919A").
func (c *Client) FetchAuthor(ctx context.Context, authorKey string) Outcome[*Author] {
	key := StripKeyPrefix(authorKey)
	if key == "" {
		return failed[*Author](ErrEmptyIdentifier)
	}

	var detail AuthorDetail
	endpoint := fmt.Sprintf("%s/authors/%s.json", c.baseURL, url.PathEscape(key))
	if err := c.getJSON(ctx, endpoint, &detail); err != nil {
		return failed[*Author](fmt.Errorf("author %s: %w", key, err))
	}

	author := TransformAuthor(key, detail, c.covers)
	return matched(&author)
}

// GetAuthor is the fail-closed form of FetchAuthor.
func (c *Client) GetAuthor(ctx context.Context, authorKey string) *Author {
	outcome := c.FetchAuthor(ctx, authorKey)
	if outcome.Failed() {
		c.logger.Warn("Open Library author lookup failed", "op", "author", "author", authorKey, "error", outcome.Err)
		return nil
	}
	return outcome.Value
}

// TransformAuthor maps an author payload to an Author. Bio uses the same
// two encodings as work descriptions.
func TransformAuthor(key string, detail AuthorDetail, covers CoverResolver) Author {
	author := Author{
		Key:  StripKeyPrefix(key),
		Name: detail.Name,
		Bio:  ExtractDescription(detail.Bio),
	}

	if birth := strings.TrimSpace(detail.BirthDate); birth != "" {
		author.BirthDate = &birth
	}

	if len(detail.Photos) > 0 && detail.Photos[0] > 0 {
		photoURL := covers.AuthorPhoto(detail.Photos[0], CoverMedium)
		author.PhotoURL = &photoURL
	}

	return author
}
