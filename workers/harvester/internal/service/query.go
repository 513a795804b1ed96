package service

import (
	"net/url"
	"strings"
)

// fileParam returns the decoded identifier carried by the "file" query
// parameter of u, or false when there is none.
func fileParam(u *url.URL) (string, bool) {
	value, ok := queryParam(u, "file")
	if !ok {
		return "", false
	}
	return decodeIdentifier(value), true
}

// queryParam returns the first non-empty value of key in the raw query.
// Pairs are split on "&" only and malformed escapes are kept literally, so a
// value like "semi;x.php" or "bad%zz.php" survives where url.ParseQuery
// would drop the whole pair.
func queryParam(u *url.URL, key string) (string, bool) {
	for _, pair := range strings.Split(u.RawQuery, "&") {
		name, value, _ := strings.Cut(pair, "=")
		if lenientUnescape(name) != key {
			continue
		}
		if value = lenientUnescape(value); value != "" {
			return value, true
		}
	}
	return "", false
}

// lenientUnescape decodes "+" and valid %XX escapes, leaving invalid ones as
// they are
func lenientUnescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// decodeIdentifier applies one more percent-decoding pass on top of query
// decoding. Editors double-encode nested paths, e.g. "inc%252Fa.php".
// Invalid escapes leave the value as it was.
func decodeIdentifier(value string) string {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

// extension returns the lowercase suffix after the last dot of the final
// path element. Leading dots do not start an extension, so ".htaccess" and
// "dir/" have none.
func extension(identifier string) string {
	base := identifier
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimLeft(base, ".")

	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// BaseExtensions are always allowed by the extractor
var BaseExtensions = []string{"php", "js", "html"}

// allowedExtensions merges BaseExtensions with caller supplied extras.
// Extras are trimmed, lowercased and stripped of a leading dot; empty ones are
// ignored.
func allowedExtensions(extra []string) map[string]bool {
	allowed := make(map[string]bool, len(BaseExtensions)+len(extra))
	for _, ext := range BaseExtensions {
		allowed[ext] = true
	}
	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed[ext] = true
		}
	}
	return allowed
}
