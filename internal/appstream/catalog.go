// Package appstream parses catalog metadata describing the bundles a
// remote offers.
package appstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// CatalogFileName is the compressed catalog file flatpak caches per remote.
const CatalogFileName = "appstream.xml.gz"

// BundleFlatpak is the bundle kind used for flatpak refs.
const BundleFlatpak = "flatpak"

// Bundle is a packaged artifact reference within a component.
type Bundle struct {
	Type string `xml:"type,attr"`
	Ref  string `xml:",chardata"`
}

// localized is a translatable element; entries without an xml:lang
// attribute carry the untranslated value.
type localized struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// Component is one catalog entry.
type Component struct {
	Type      string      `xml:"type,attr"`
	ID        string      `xml:"id"`
	Names     []localized `xml:"name"`
	Extends   []string    `xml:"extends"`
	Languages []string    `xml:"languages>lang"`
	Bundles   []Bundle    `xml:"bundle"`
}

// Name returns the untranslated component name.
func (c Component) Name() string {
	for _, n := range c.Names {
		if n.Lang == "" {
			return n.Value
		}
	}
	if len(c.Names) > 0 {
		return c.Names[0].Value
	}
	return ""
}

// Bundle returns the bundle ref of the given kind.
func (c Component) Bundle(kind string) (string, bool) {
	for _, b := range c.Bundles {
		if b.Type == kind {
			return b.Ref, true
		}
	}
	return "", false
}

// Catalog is a parsed catalog: components in document order plus an
// id-keyed index.
type Catalog struct {
	Origin     string
	Components []Component

	byID map[string]Component
}

// Component looks up an entry by id.
func (c *Catalog) Component(id string) (Component, bool) {
	comp, ok := c.byID[id]
	return comp, ok
}

type catalogXML struct {
	XMLName    xml.Name    `xml:"components"`
	Origin     string      `xml:"origin,attr"`
	Components []Component `xml:"component"`
}

// Parse decodes catalog XML.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse catalog: %w", err)
	}

	cat := &Catalog{
		Origin:     doc.Origin,
		Components: doc.Components,
		byID:       make(map[string]Component, len(doc.Components)),
	}
	for _, comp := range doc.Components {
		cat.byID[comp.ID] = comp
	}
	return cat, nil
}

// Load reads and decompresses a cached catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog: %w", err)
	}
	defer f.Close() //nolint:errcheck

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress catalog: %w", err)
	}
	defer zr.Close() //nolint:errcheck

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog %s: %w", path, err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}
