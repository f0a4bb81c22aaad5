package openlibrary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoverURLByID(t *testing.T) {
	tests := []struct {
		size CoverSize
		want string
	}{
		{CoverSmall, "https://covers.openlibrary.org/b/id/258027-S.jpg"},
		{CoverMedium, "https://covers.openlibrary.org/b/id/258027-M.jpg"},
		{CoverLarge, "https://covers.openlibrary.org/b/id/258027-L.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			require.Equal(t, tt.want, CoverURL(258027, tt.size))
			require.Equal(t, CoverURL(258027, tt.size), CoverURL(258027, tt.size))
		})
	}
}

func TestCoverURLDefaultsToMedium(t *testing.T) {
	var size CoverSize
	require.Equal(t, "M", size.String())
	require.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441013593-M.jpg", CoverURLByISBN("9780441013593", size))
}

func TestCoverResolverCustomBase(t *testing.T) {
	r := NewCoverResolver("http://covers.test/")

	require.Equal(t, "http://covers.test/b", r.BaseURL())
	require.Equal(t, "http://covers.test/b/id/7-L.jpg", r.ByID(7, CoverLarge))
	require.Equal(t, "http://covers.test/b/isbn/not-an-isbn-S.jpg", r.ByISBN("not-an-isbn", CoverSmall))
	require.Equal(t, "http://covers.test/a/id/42-M.jpg", r.AuthorPhoto(42, CoverMedium))
}

func TestCoverResolverZeroValue(t *testing.T) {
	var r CoverResolver
	require.Equal(t, "https://covers.openlibrary.org/b/id/1-M.jpg", r.ByID(1, CoverMedium))
	require.Equal(t, NewCoverResolver(""), NewCoverResolver(DefaultCoversURL))
}

func TestParseCoverSize(t *testing.T) {
	for in, want := range map[string]CoverSize{
		"":       CoverMedium,
		"M":      CoverMedium,
		"medium": CoverMedium,
		"s":      CoverSmall,
		"Small":  CoverSmall,
		"L":      CoverLarge,
		" large": CoverLarge,
	} {
		got, err := ParseCoverSize(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseCoverSize("XL")
	require.Error(t, err)
}
