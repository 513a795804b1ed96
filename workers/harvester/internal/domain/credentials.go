package domain

import (
	"sort"
	"strings"
)

// Credentials maps cookie names to values. It is built once per run and only
// read afterwards.
type Credentials map[string]string

// ParseCookieString splits a raw "a=b; c=d" cookie string. Pairs without "="
// are ignored, only the first "=" separates name from value, and whitespace
// around both is trimmed.
func ParseCookieString(raw string) Credentials {
	creds := make(Credentials)
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		creds[name] = strings.TrimSpace(value)
	}
	return creds
}

// Header renders the credentials as a Cookie header value, sorted by name.
func (c Credentials) Header() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+c[name])
	}
	return strings.Join(pairs, "; ")
}

// Empty reports whether no cookie was parsed
func (c Credentials) Empty() bool {
	return len(c) == 0
}
