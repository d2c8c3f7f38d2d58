package voice

import (
	"github.com/voicekit/voices/internal/flatpak"
	"github.com/voicekit/voices/internal/langtag"
)

// Ref identifies one installable voice unit: the voice bundle and the
// provider bundle that enables it, inside one installation root reachable
// through one remote. Refs are immutable after discovery.
type Ref struct {
	Installation flatpak.Installation
	Remote       flatpak.Remote

	// ID is the voice component id, unique within the installation root.
	ID   string
	Name string

	// BundleID is the flatpak ref installed for the voice itself.
	BundleID string

	ProviderID       string
	ProviderName     string
	ProviderBundleID string

	// LanguageTags are the raw tags declared by the catalog entry.
	LanguageTags []string
	Languages    langtag.Languages
}
