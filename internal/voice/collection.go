package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voicekit/voices/internal/appstream"
	"github.com/voicekit/voices/internal/flatpak"
	"github.com/voicekit/voices/internal/langtag"
)

// voiceIDMarker qualifies a catalog entry as a voice. The entry must
// also extend exactly one other entry, its provider, resolvable in the
// same catalog.
const voiceIDMarker = "Speech.Provider.Voice"

// Sentinel labels prefixed to the provider and language lists.
const (
	AllProvidersLabel = "All Providers"
	AllLanguagesLabel = "All Languages"
)

// Provider identifies a speech provider seen during discovery.
type Provider struct {
	ID   string
	Name string
}

// Collection aggregates every discovered voice unit across installation
// roots and keeps their status consistent with filesystem change events.
type Collection struct {
	installer     *Installer
	installations []flatpak.Installation
	loadCatalog   func(path string) (*appstream.Catalog, error)
	logger        *log.Logger

	mu         sync.Mutex
	discovered bool
	units      []*Unit
	providers  []Provider
	languages  []string
	monitors   []flatpak.ChangeMonitor
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewCollection creates an empty collection over the given roots. All
// units share the one installer.
func NewCollection(installer *Installer, installations ...flatpak.Installation) *Collection {
	return &Collection{
		installer:     installer,
		installations: installations,
		loadCatalog:   appstream.Load,
		logger:        log.Default(),
		done:          make(chan struct{}),
	}
}

// Discover populates the collection: for every root, snapshot the
// installed set, register a change monitor, and walk every enabled
// remote's cached catalog. Enumeration is best-effort only in the sense
// that remotes without cached catalog data are skipped; any I/O or parse
// failure aborts the whole call.
//
// Discover runs once per collection; later calls return
// ErrAlreadyDiscovered so monitors are never registered twice.
func (c *Collection) Discover(ctx context.Context) error {
	c.mu.Lock()
	if c.discovered {
		c.mu.Unlock()
		return ErrAlreadyDiscovered
	}
	c.discovered = true
	c.mu.Unlock()

	visited := make(map[string]struct{})
	var units []*Unit

	for _, inst := range c.installations {
		installed, err := inst.ListInstalledRefs(ctx)
		if err != nil {
			return fmt.Errorf("discovery failed for %s root: %w", inst.Name(), err)
		}

		monitor, err := inst.CreateMonitor()
		if err != nil {
			return fmt.Errorf("unable to monitor %s root: %w", inst.Name(), err)
		}
		c.mu.Lock()
		c.monitors = append(c.monitors, monitor)
		c.mu.Unlock()
		c.wg.Add(1)
		go c.watch(monitor, inst)

		remotes, err := inst.ListRemotes(ctx)
		if err != nil {
			return fmt.Errorf("discovery failed for %s root: %w", inst.Name(), err)
		}

		for _, remote := range remotes {
			if remote.Disabled {
				continue
			}
			if _, seen := visited[remote.URL]; seen {
				continue
			}
			visited[remote.URL] = struct{}{}

			path := filepath.Join(remote.AppstreamDir, appstream.CatalogFileName)
			if _, err := os.Stat(path); err != nil {
				// No locally cached catalog data for this remote.
				continue
			}

			catalog, err := c.loadCatalog(path)
			if err != nil {
				return fmt.Errorf("discovery failed for remote %s: %w", remote.Name, err)
			}

			found := c.unitsFromCatalog(inst, remote, catalog, installed)
			c.logger.Debug("catalog scanned",
				"root", inst.Name(), "remote", remote.Name, "voices", len(found))
			units = append(units, found...)
		}
	}

	c.mu.Lock()
	c.units = units
	c.providers, c.languages = aggregate(units)
	c.mu.Unlock()

	c.logger.Info("voice discovery complete", "voices", len(units))
	return nil
}

// unitsFromCatalog builds units for every qualifying entry, in catalog
// order. Entries that do not qualify are skipped, never an error.
func (c *Collection) unitsFromCatalog(inst flatpak.Installation, remote flatpak.Remote, catalog *appstream.Catalog, installed map[string]struct{}) []*Unit {
	var units []*Unit
	for _, comp := range catalog.Components {
		if !strings.Contains(comp.ID, voiceIDMarker) || len(comp.Extends) != 1 {
			continue
		}
		provider, ok := catalog.Component(comp.Extends[0])
		if !ok {
			continue
		}
		bundleID, ok := comp.Bundle(appstream.BundleFlatpak)
		if !ok {
			continue
		}
		providerBundleID, ok := provider.Bundle(appstream.BundleFlatpak)
		if !ok {
			continue
		}

		status := StatusUninstalled
		if _, ok := installed[comp.ID]; ok {
			status = StatusInstalled
		}

		ref := Ref{
			Installation:     inst,
			Remote:           remote,
			ID:               comp.ID,
			Name:             comp.Name(),
			BundleID:         bundleID,
			ProviderID:       provider.ID,
			ProviderName:     provider.Name(),
			ProviderBundleID: providerBundleID,
			LanguageTags:     comp.Languages,
			Languages:        langtag.Resolve(comp.Languages),
		}
		units = append(units, NewUnit(ref, status, c.installer))
	}
	return units
}

// aggregate derives the provider and language lists shown to the user.
// Both are computed exactly once, at the end of discovery.
func aggregate(units []*Unit) ([]Provider, []string) {
	providers := []Provider{{Name: AllProvidersLabel}}
	seenProviders := make(map[string]struct{})
	seenLanguages := make(map[string]struct{})

	for _, u := range units {
		if _, ok := seenProviders[u.ProviderID()]; !ok {
			seenProviders[u.ProviderID()] = struct{}{}
			providers = append(providers, Provider{ID: u.ProviderID(), Name: u.ProviderName()})
		}
		for _, lang := range u.LanguageNames() {
			seenLanguages[lang] = struct{}{}
		}
	}

	var sorted []string
	for lang := range seenLanguages {
		sorted = append(sorted, lang)
	}
	sort.Strings(sorted)

	return providers, append([]string{AllLanguagesLabel}, sorted...)
}

// watch applies reconciliation for one root until the monitor or the
// collection closes.
func (c *Collection) watch(monitor flatpak.ChangeMonitor, inst flatpak.Installation) {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-monitor.Changes():
			if !ok {
				return
			}
			c.reconcile(context.Background(), inst)
		}
	}
}

// reconcile recomputes the installed set for one root and corrects the
// status of every unit in that root that no queue job currently owns.
func (c *Collection) reconcile(ctx context.Context, inst flatpak.Installation) {
	installed, err := inst.ListInstalledRefs(ctx)
	if err != nil {
		c.logger.Warn("reconciliation skipped, unable to list installed refs",
			"root", inst.Name(), "err", err)
		return
	}

	for _, u := range c.Units() {
		if u.Ref().Installation != inst {
			continue
		}
		_, ok := installed[u.ID()]
		u.reconcileStatus(ok)
	}
	c.logger.Debug("reconciled installation root", "root", inst.Name())
}

// Units returns the discovered units in discovery order.
func (c *Collection) Units() []*Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Unit{}, c.units...)
}

// Find returns the unit with the given component id.
func (c *Collection) Find(id string) (*Unit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.units {
		if u.ID() == id {
			return u, true
		}
	}
	return nil, false
}

// Providers returns the deduplicated providers seen during discovery,
// prefixed with the all-providers sentinel.
func (c *Collection) Providers() []Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Provider{}, c.providers...)
}

// LanguageNames returns the sorted deduplicated language names seen
// during discovery, prefixed with the all-languages sentinel.
func (c *Collection) LanguageNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.languages...)
}

// Close stops all change monitors.
func (c *Collection) Close() error {
	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	monitors := c.monitors
	c.monitors = nil
	c.mu.Unlock()

	for _, m := range monitors {
		if err := m.Close(); err != nil {
			c.logger.Warn("unable to close monitor", "err", err)
		}
	}
	c.wg.Wait()
	return nil
}
