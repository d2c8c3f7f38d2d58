package voice

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Unit is the mutable record for one installable voice. Its status only
// changes through the installer queue (authoritative, while a job is in
// flight) or through collection reconciliation (passive, never while a
// job is in flight). All other access is read-only.
type Unit struct {
	ref       Ref
	installer *Installer

	mu      sync.Mutex
	status  Status
	subs    map[int]func(old, new Status)
	nextSub int
}

// NewUnit creates a unit with its initial status fixed from the
// installed-set snapshot taken at discovery time.
func NewUnit(ref Ref, status Status, installer *Installer) *Unit {
	return &Unit{
		ref:       ref,
		installer: installer,
		status:    status,
		subs:      make(map[int]func(old, new Status)),
	}
}

// Ref returns the unit's immutable identity.
func (u *Unit) Ref() Ref { return u.ref }

// ID returns the voice component id.
func (u *Unit) ID() string { return u.ref.ID }

// Name returns the voice display name.
func (u *Unit) Name() string { return u.ref.Name }

// ProviderID returns the provider component id.
func (u *Unit) ProviderID() string { return u.ref.ProviderID }

// ProviderName returns the provider display name.
func (u *Unit) ProviderName() string { return u.ref.ProviderName }

// LanguageNames returns the language-only display names of the unit.
func (u *Unit) LanguageNames() []string { return u.ref.Languages.LanguageNames() }

// DisplayLanguages returns the full language-and-region display names.
func (u *Unit) DisplayLanguages() []string { return u.ref.Languages.DisplayNames() }

// Status returns the current installation status.
func (u *Unit) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Subscribe registers a callback invoked synchronously whenever the
// status changes, with the old and new value. The returned function
// removes the subscription.
func (u *Unit) Subscribe(fn func(old, new Status)) func() {
	u.mu.Lock()
	id := u.nextSub
	u.nextSub++
	u.subs[id] = fn
	u.mu.Unlock()

	return func() {
		u.mu.Lock()
		delete(u.subs, id)
		u.mu.Unlock()
	}
}

// Install queues an install operation for this unit.
func (u *Unit) Install(ctx context.Context) error {
	return u.installer.EnqueueInstall(ctx, u)
}

// Uninstall queues an uninstall operation for this unit.
func (u *Unit) Uninstall(ctx context.Context) error {
	return u.installer.EnqueueUninstall(ctx, u)
}

// setStatus applies a status change on behalf of the installer queue.
// Illegal edges are rejected.
func (u *Unit) setStatus(status Status) {
	u.mu.Lock()
	old := u.status
	if old == status {
		u.mu.Unlock()
		return
	}
	if !ValidTransition(old, status) {
		u.mu.Unlock()
		log.Warn("illegal status transition rejected",
			"unit", u.ref.ID, "from", old, "to", status)
		return
	}
	u.status = status
	subs := make([]func(old, new Status), 0, len(u.subs))
	for _, fn := range u.subs {
		subs = append(subs, fn)
	}
	u.mu.Unlock()

	for _, fn := range subs {
		fn(old, status)
	}
}

// beginJob atomically claims the unit for a queue job: when the unit is
// in the required starting status it moves to the in-flight status and
// reports true. Any other status leaves the unit untouched, so a
// reconcile event landing between enqueue and execution turns the job
// into a no-op.
func (u *Unit) beginJob(from, inFlight Status) bool {
	u.mu.Lock()
	if u.status != from {
		u.mu.Unlock()
		return false
	}
	u.status = inFlight
	subs := make([]func(old, new Status), 0, len(u.subs))
	for _, fn := range u.subs {
		subs = append(subs, fn)
	}
	u.mu.Unlock()

	for _, fn := range subs {
		fn(from, inFlight)
	}
	return true
}

// reconcileStatus applies a passively observed status. Units owned by an
// in-flight job are left untouched; the job's result is authoritative.
func (u *Unit) reconcileStatus(installed bool) {
	u.mu.Lock()
	if u.status.InFlight() {
		u.mu.Unlock()
		return
	}
	old := u.status
	status := StatusUninstalled
	if installed {
		status = StatusInstalled
	}
	if old == status {
		u.mu.Unlock()
		return
	}
	u.status = status
	subs := make([]func(old, new Status), 0, len(u.subs))
	for _, fn := range u.subs {
		subs = append(subs, fn)
	}
	u.mu.Unlock()

	for _, fn := range subs {
		fn(old, status)
	}
}
