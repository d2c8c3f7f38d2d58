package voice

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// searchSource adapts a unit slice for fuzzy matching. Each unit is
// represented by its name, provider name and display languages.
type searchSource []*Unit

func (s searchSource) String(i int) string {
	u := s[i]
	tokens := append([]string{u.Name(), u.ProviderName()}, u.DisplayLanguages()...)
	return strings.Join(tokens, " ")
}

func (s searchSource) Len() int { return len(s) }

// Search returns the units fuzzy-matching the query, best match first.
// An empty query returns all units unchanged.
func Search(units []*Unit, query string) []*Unit {
	if query == "" {
		return units
	}

	matches := fuzzy.FindFrom(query, searchSource(units))
	ranked := make([]*Unit, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, units[m.Index])
	}
	return ranked
}
