package domain

// Mode selects which editor document is being read
type Mode string

const (
	ModeThemeEditor  Mode = "theme-editor.php"
	ModePluginEditor Mode = "plugin-editor.php"
)

// Entry pairs a file identifier with the URL that renders it in the editor
type Entry struct {
	Identifier string
	URL        string
}

// Manifest is everything discovered in one editor document
type Manifest struct {
	Container string
	Entries   []Entry
}

// Identifiers returns the distinct identifiers in first-seen order
func (m *Manifest) Identifiers() []string {
	seen := make(map[string]bool, len(m.Entries))
	ids := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		if seen[e.Identifier] {
			continue
		}
		seen[e.Identifier] = true
		ids = append(ids, e.Identifier)
	}
	return ids
}

// URLs returns the fetch URLs, parallel to Entries
func (m *Manifest) URLs() []string {
	urls := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		urls[i] = e.URL
	}
	return urls
}

// Empty reports whether the document referenced no editable files
func (m *Manifest) Empty() bool {
	return len(m.Entries) == 0
}
