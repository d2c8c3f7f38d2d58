package voice

import (
	"regexp"
	"strings"
	"sync"
)

// Filter is the composed predicate the presentation layer applies to the
// collection: provider, language and free-text criteria, all of which
// must match. Unset criteria are vacuously true.
type Filter struct {
	mu       sync.Mutex
	provider string
	language string
	text     string
	onChange func()
}

// NewFilter creates a filter that matches everything.
func NewFilter() *Filter {
	return &Filter{}
}

// OnChange registers a callback invoked after any criterion changes.
// No diffing is attempted: a change means all results may differ.
func (f *Filter) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// SetProvider filters on a provider id. Empty means all providers.
func (f *Filter) SetProvider(id string) {
	f.mu.Lock()
	f.provider = id
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetLanguage filters on a language display name. Empty means all
// languages.
func (f *Filter) SetLanguage(name string) {
	f.mu.Lock()
	f.language = name
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetText filters on a case-insensitive pattern matched against the
// unit name, provider name and display languages. Empty matches all.
func (f *Filter) SetText(text string) {
	f.mu.Lock()
	f.text = text
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Match reports whether the unit passes all three criteria.
func (f *Filter) Match(u *Unit) bool {
	f.mu.Lock()
	provider, language, text := f.provider, f.language, f.text
	f.mu.Unlock()

	return matchProvider(u, provider) &&
		matchLanguage(u, language) &&
		matchText(u, text)
}

func matchProvider(u *Unit, provider string) bool {
	return provider == "" || u.ProviderID() == provider
}

func matchLanguage(u *Unit, language string) bool {
	if language == "" {
		return true
	}
	for _, name := range u.LanguageNames() {
		if name == language {
			return true
		}
	}
	return false
}

func matchText(u *Unit, text string) bool {
	if text == "" {
		return true
	}

	tokens := append([]string{u.Name(), u.ProviderName()}, u.DisplayLanguages()...)
	haystack := strings.Join(tokens, " ")

	re, err := regexp.Compile("(?i)" + text)
	if err != nil {
		// Not a valid pattern; fall back to a literal substring match.
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(text))
	}
	return re.MatchString(haystack)
}
