package voice

import (
	"testing"

	"github.com/voicekit/voices/internal/flatpak"
	"github.com/voicekit/voices/internal/langtag"
)

// filterUnit builds a standalone unit with resolved languages for
// predicate tests. No installer is required.
func filterUnit(name, providerID, providerName string, langs ...string) *Unit {
	ref := Ref{
		Remote:       flatpak.Remote{Name: "voicehub"},
		ID:           "org.example.Speech.Provider.Voice." + name,
		Name:         name,
		ProviderID:   providerID,
		ProviderName: providerName,
		LanguageTags: langs,
		Languages:    langtag.Resolve(langs),
	}
	return NewUnit(ref, StatusUninstalled, nil)
}

func TestFilterMatchesEverythingByDefault(t *testing.T) {
	f := NewFilter()
	u := filterUnit("Amy", "org.example.Provider", "Example Provider", "en_US")
	if !f.Match(u) {
		t.Error("empty filter should match every unit")
	}
}

func TestFilterProvider(t *testing.T) {
	amy := filterUnit("Amy", "org.example.Provider", "Example Provider", "en_US")
	joao := filterUnit("Joao", "org.other.Provider", "Other Provider", "pt_BR")

	f := NewFilter()
	f.SetProvider("org.example.Provider")
	if !f.Match(amy) {
		t.Error("matching provider rejected")
	}
	if f.Match(joao) {
		t.Error("non-matching provider accepted")
	}

	f.SetProvider("")
	if !f.Match(joao) {
		t.Error("cleared provider criterion should match everything")
	}
}

func TestFilterLanguage(t *testing.T) {
	amy := filterUnit("Amy", "org.example.Provider", "Example Provider", "en_US", "en_GB")
	joao := filterUnit("Joao", "org.example.Provider", "Example Provider", "pt_BR")

	f := NewFilter()
	f.SetLanguage("English")
	if !f.Match(amy) {
		t.Error("unit with matching language rejected")
	}
	if f.Match(joao) {
		t.Error("unit without matching language accepted")
	}
}

func TestFilterText(t *testing.T) {
	amy := filterUnit("Amy", "org.example.Provider", "Example Provider", "en_US")

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty matches", "", true},
		{"case-insensitive name", "AMY", true},
		{"provider name", "example prov", true},
		{"display language", "american english", true},
		{"regex alternation", "amy|zoe", true},
		{"regex anchors", "^Amy Example", true},
		{"no match", "zoe", false},
		{"invalid regex falls back to substring", "amy(", false},
	}

	f := NewFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.SetText(tt.text)
			if got := f.Match(amy); got != tt.want {
				t.Errorf("Match() with text %q = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFilterInvalidRegexSubstringFallback(t *testing.T) {
	u := filterUnit("Amy (beta)", "org.example.Provider", "Example Provider", "en_US")

	f := NewFilter()
	f.SetText("amy (")
	if !f.Match(u) {
		t.Error("invalid pattern should fall back to a literal substring match")
	}
}

func TestFilterCriteriaCompose(t *testing.T) {
	amy := filterUnit("Amy", "org.example.Provider", "Example Provider", "en_US")

	f := NewFilter()
	f.SetProvider("org.example.Provider")
	f.SetLanguage("English")
	f.SetText("amy")
	if !f.Match(amy) {
		t.Error("all criteria match, unit rejected")
	}

	f.SetLanguage("Portuguese")
	if f.Match(amy) {
		t.Error("one failing criterion should reject the unit")
	}
}

func TestFilterOnChange(t *testing.T) {
	f := NewFilter()
	var fired int
	f.OnChange(func() { fired++ })

	f.SetProvider("org.example.Provider")
	f.SetLanguage("English")
	f.SetText("amy")

	if fired != 3 {
		t.Errorf("change callback fired %d times, want 3", fired)
	}
}
