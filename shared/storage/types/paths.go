package types

import (
	"fmt"
	"path"
	"strings"
)

// NormalizeIdentifier turns an untrusted, slash-delimited file identifier into
// a clean relative path. Backslashes are treated as separators and a leading
// "./" is dropped. Absolute paths, drive prefixes, ".." segments, NUL bytes
// and identifiers that clean down to nothing are rejected with ErrPathRejected.
//
// A trailing separator marks a bare directory reference; it is kept so that
// SplitIdentifier can tell directories from files.
func NormalizeIdentifier(identifier string) (string, error) {
	if strings.ContainsRune(identifier, 0) {
		return "", fmt.Errorf("%w: identifier contains NUL", ErrPathRejected)
	}

	id := strings.ReplaceAll(identifier, "\\", "/")

	if strings.HasPrefix(id, "/") {
		return "", fmt.Errorf("%w: absolute identifier %q", ErrPathRejected, identifier)
	}
	if hasDrivePrefix(id) {
		return "", fmt.Errorf("%w: drive-qualified identifier %q", ErrPathRejected, identifier)
	}

	for _, segment := range strings.Split(id, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: parent segment in %q", ErrPathRejected, identifier)
		}
	}

	isDir := strings.HasSuffix(id, "/")
	cleaned := path.Clean(id)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("%w: empty identifier %q", ErrPathRejected, identifier)
	}

	if isDir {
		return cleaned + "/", nil
	}
	return cleaned, nil
}

// SplitIdentifier normalizes identifier and splits it into its directory and
// file name parts. The file part is empty for bare directory references.
func SplitIdentifier(identifier string) (dir, file string, err error) {
	normalized, err := NormalizeIdentifier(identifier)
	if err != nil {
		return "", "", err
	}

	if strings.HasSuffix(normalized, "/") {
		return strings.TrimSuffix(normalized, "/"), "", nil
	}

	dir, file = path.Split(normalized)
	return strings.TrimSuffix(dir, "/"), file, nil
}

// ValidateContainer checks that name can be used as one directory name
// directly under the output root.
func ValidateContainer(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidContainer)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidContainer, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidContainer, name)
	case hasDrivePrefix(name):
		return fmt.Errorf("%w: %q is drive-qualified", ErrInvalidContainer, name)
	}
	return nil
}

func hasDrivePrefix(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
