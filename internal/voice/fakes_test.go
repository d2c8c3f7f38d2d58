package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/voicekit/voices/internal/flatpak"
	"github.com/voicekit/voices/internal/sessionbus"
)

// fakeRunner records every invocation and answers with scripted exit
// codes. onRun, when set, observes each call before it returns.
type fakeRunner struct {
	mu       sync.Mutex
	calls    [][]string
	exitCode func(argv []string) int
	onRun    func(argv []string)
	runErr   error
}

func (r *fakeRunner) Run(ctx context.Context, argv ...string) (int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{}, argv...))
	onRun := r.onRun
	exitCode := r.exitCode
	err := r.runErr
	r.mu.Unlock()

	if onRun != nil {
		onRun(argv)
	}
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if err != nil {
		return -1, err
	}
	if exitCode != nil {
		return exitCode(argv), nil
	}
	return 0, nil
}

func (r *fakeRunner) Output(ctx context.Context, argv ...string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// fakeMonitor delivers change events pushed by the test.
type fakeMonitor struct {
	ch   chan struct{}
	once sync.Once
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{ch: make(chan struct{}, 1)}
}

func (m *fakeMonitor) Changes() <-chan struct{} { return m.ch }

func (m *fakeMonitor) Close() error {
	m.once.Do(func() { close(m.ch) })
	return nil
}

func (m *fakeMonitor) fire() {
	select {
	case m.ch <- struct{}{}:
	default:
	}
}

// fakeInstallation is an in-memory installation root.
type fakeInstallation struct {
	name    string
	mu      sync.Mutex
	refs    map[string]struct{}
	remotes []flatpak.Remote
	monitor *fakeMonitor
	listErr error
}

func newFakeInstallation(name string, remotes ...flatpak.Remote) *fakeInstallation {
	return &fakeInstallation{
		name:    name,
		refs:    make(map[string]struct{}),
		remotes: remotes,
		monitor: newFakeMonitor(),
	}
}

func (i *fakeInstallation) Name() string { return i.name }

func (i *fakeInstallation) ListInstalledRefs(context.Context) (map[string]struct{}, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.listErr != nil {
		return nil, i.listErr
	}
	refs := make(map[string]struct{}, len(i.refs))
	for id := range i.refs {
		refs[id] = struct{}{}
	}
	return refs, nil
}

func (i *fakeInstallation) ListRemotes(context.Context) ([]flatpak.Remote, error) {
	return append([]flatpak.Remote{}, i.remotes...), nil
}

func (i *fakeInstallation) CreateMonitor() (flatpak.ChangeMonitor, error) {
	return i.monitor, nil
}

func (i *fakeInstallation) addRef(id string) {
	i.mu.Lock()
	i.refs[id] = struct{}{}
	i.mu.Unlock()
}

func (i *fakeInstallation) removeRef(id string) {
	i.mu.Lock()
	delete(i.refs, id)
	i.mu.Unlock()
}

// fakeBus answers pid lookups and records pings.
type fakeBus struct {
	mu    sync.Mutex
	pids  map[string]int
	pings []string
}

func newFakeBus() *fakeBus {
	return &fakeBus{pids: make(map[string]int)}
}

func (b *fakeBus) ProcessID(_ context.Context, name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pid, ok := b.pids[name]; ok {
		return pid, nil
	}
	return 0, sessionbus.ErrNotRunning
}

func (b *fakeBus) Ping(_ context.Context, name string) error {
	b.mu.Lock()
	b.pings = append(b.pings, name)
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) Pings() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.pings...)
}

// testUnit builds a unit in the given installation with a shared
// provider.
func testUnit(id string, inst *fakeInstallation, installer *Installer, status Status) *Unit {
	ref := Ref{
		Installation:     inst,
		Remote:           flatpak.Remote{Name: "voicehub", URL: "https://voicehub.example"},
		ID:               id,
		Name:             "Voice " + id,
		BundleID:         "app/" + id + "/x86_64/stable",
		ProviderID:       "org.example.Provider",
		ProviderName:     "Example Provider",
		ProviderBundleID: "app/org.example.Provider/x86_64/stable",
		LanguageTags:     []string{"en_US"},
	}
	return NewUnit(ref, status, installer)
}
