// Package flatpak exposes the package-manager collaborators: installation
// roots, their remotes, installed-ref snapshots and change monitors.
package flatpak

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/voicekit/voices/internal/hostexec"
)

// Remote is a configured origin of installable bundles.
type Remote struct {
	Name         string
	URL          string
	Disabled     bool
	AppstreamDir string
}

// ChangeMonitor delivers coalesced notifications when an installation
// root changes on disk.
type ChangeMonitor interface {
	Changes() <-chan struct{}
	Close() error
}

// Installation is one package-manager scope (system-wide or per-user).
type Installation interface {
	Name() string

	// ListInstalledRefs returns the application ids currently installed
	// in this root.
	ListInstalledRefs(ctx context.Context) (map[string]struct{}, error)

	// ListRemotes returns the remotes configured for this root.
	ListRemotes(ctx context.Context) ([]Remote, error)

	// CreateMonitor starts watching the root for state changes.
	CreateMonitor() (ChangeMonitor, error)
}

const systemBaseDir = "/var/lib/flatpak"

// cliInstallation shells out to the flatpak binary through the host
// runner for all reads.
type cliInstallation struct {
	name      string
	scopeFlag string
	baseDir   string
	runner    hostexec.Runner
}

// System returns the system-wide installation root.
func System(runner hostexec.Runner) Installation {
	return &cliInstallation{
		name:      "system",
		scopeFlag: "--system",
		baseDir:   systemBaseDir,
		runner:    runner,
	}
}

// User returns the per-user installation root.
func User(runner hostexec.Runner) (Installation, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("unable to locate home directory: %w", err)
	}
	return &cliInstallation{
		name:      "user",
		scopeFlag: "--user",
		baseDir:   filepath.Join(home, ".local", "share", "flatpak"),
		runner:    runner,
	}, nil
}

// Roots returns the system and user installation roots, in that order.
func Roots(runner hostexec.Runner) ([]Installation, error) {
	user, err := User(runner)
	if err != nil {
		return nil, err
	}
	return []Installation{System(runner), user}, nil
}

func (i *cliInstallation) Name() string { return i.name }

func (i *cliInstallation) ListInstalledRefs(ctx context.Context) (map[string]struct{}, error) {
	out, err := i.runner.Output(ctx, "flatpak", "list", i.scopeFlag, "--columns=application")
	if err != nil {
		return nil, fmt.Errorf("unable to list installed refs for %s root: %w", i.name, err)
	}

	refs := make(map[string]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			refs[line] = struct{}{}
		}
	}
	return refs, nil
}

func (i *cliInstallation) ListRemotes(ctx context.Context) ([]Remote, error) {
	out, err := i.runner.Output(ctx, "flatpak", "remotes", i.scopeFlag, "--columns=name,url,options")
	if err != nil {
		return nil, fmt.Errorf("unable to list remotes for %s root: %w", i.name, err)
	}

	var remotes []Remote
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		r := Remote{
			Name:         fields[0],
			URL:          fields[1],
			AppstreamDir: filepath.Join(i.baseDir, "appstream", fields[0], flatpakArch(), "active"),
		}
		if len(fields) > 2 && strings.Contains(fields[2], "disabled") {
			r.Disabled = true
		}
		remotes = append(remotes, r)
	}
	return remotes, nil
}

func (i *cliInstallation) CreateMonitor() (ChangeMonitor, error) {
	return newMonitor(i.baseDir)
}

// flatpakArch maps the Go architecture name onto flatpak's.
func flatpakArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	default:
		return runtime.GOARCH
	}
}
