// Package langtag resolves raw language tags from catalog metadata into
// display names.
package langtag

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages holds the resolvable tags of one catalog entry.
type Languages struct {
	tags []language.Tag
}

// Resolve canonicalizes raw tags. Tags that cannot be parsed are dropped.
func Resolve(raw []string) Languages {
	var tags []language.Tag
	for _, r := range raw {
		// Catalog metadata commonly uses POSIX-style underscores.
		tag, err := language.Parse(strings.ReplaceAll(r, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return Languages{tags: tags}
}

// Tags returns the canonical tags.
func (l Languages) Tags() []language.Tag {
	return append([]language.Tag{}, l.tags...)
}

// DisplayNames returns the full display names (language and region),
// deduplicated and sorted. Tags without display data are excluded.
func (l Languages) DisplayNames() []string {
	namer := display.English.Tags()
	seen := make(map[string]struct{})
	var names []string
	for _, tag := range l.tags {
		name := namer.Name(tag)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LanguageNames returns language-only display names, deduplicated and
// sorted. Tags without display data are excluded.
func (l Languages) LanguageNames() []string {
	namer := display.English.Languages()
	seen := make(map[string]struct{})
	var names []string
	for _, tag := range l.tags {
		base, _ := tag.Base()
		name := namer.Name(base)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
