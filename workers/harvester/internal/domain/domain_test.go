package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookieString(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Credentials
	}{
		{
			name:     "typical wordpress cookies",
			raw:      "wordpress_logged_in_abc=admin|123|xyz; wp-settings-1=libraryContent=browse",
			expected: Credentials{"wordpress_logged_in_abc": "admin|123|xyz", "wp-settings-1": "libraryContent=browse"},
		},
		{
			name:     "whitespace trimmed",
			raw:      "  a = 1 ;b=2  ",
			expected: Credentials{"a": "1", "b": "2"},
		},
		{
			name:     "pairs without equals ignored",
			raw:      "a=1; garbage; ;=orphan",
			expected: Credentials{"a": "1"},
		},
		{
			name:     "empty value kept",
			raw:      "a=",
			expected: Credentials{"a": ""},
		},
		{
			name:     "empty string",
			raw:      "",
			expected: Credentials{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCookieString(tt.raw))
		})
	}
}

func TestCredentials_Header(t *testing.T) {
	creds := ParseCookieString("z=26; a=1; m=13")

	assert.Equal(t, "a=1; m=13; z=26", creds.Header())
	assert.False(t, creds.Empty())
	assert.True(t, Credentials{}.Empty())
}

func TestManifest(t *testing.T) {
	m := &Manifest{
		Container: "mytheme",
		Entries: []Entry{
			{Identifier: "index.php", URL: "u1"},
			{Identifier: "inc/a.php", URL: "u2"},
			{Identifier: "index.php", URL: "u3"},
		},
	}

	assert.Equal(t, []string{"index.php", "inc/a.php"}, m.Identifiers())
	assert.Equal(t, []string{"u1", "u2", "u3"}, m.URLs())
	assert.False(t, m.Empty())
	assert.True(t, (&Manifest{}).Empty())
}

func TestDomainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDomainError(CodeFetchFailed, "GET failed", cause, true)

	assert.Equal(t, "FETCH_FAILED: GET failed - connection refused", err.Error())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrParseFailed)
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRetryable(cause))

	assert.Equal(t, "MISSING_ELEMENT: Expected element not found", ErrMissingElement.Error())
}
