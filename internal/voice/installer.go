package voice

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voicekit/voices/internal/hostexec"
)

// operation is the kind of work a queued job performs.
type operation int

const (
	opInstall operation = iota
	opUninstall
)

func (o operation) String() string {
	if o == opInstall {
		return "install"
	}
	return "uninstall"
}

// job is one queued (operation, unit, context) entry.
type job struct {
	op   operation
	unit *Unit
	ctx  context.Context
}

// Installer is the serialized task runner for install and uninstall
// operations. Jobs execute strictly FIFO, one at a time, across all
// units: the package manager command line is not safe to invoke
// concurrently, so the queue is global rather than per-unit.
//
// Construct exactly one Installer and share it between all units.
type Installer struct {
	runner    hostexec.Runner
	restarter *Restarter
	logger    *log.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []job
	running bool
	closed  bool
}

// NewInstaller creates an installer queue.
func NewInstaller(runner hostexec.Runner, restarter *Restarter) *Installer {
	i := &Installer{
		runner:    runner,
		restarter: restarter,
		logger:    log.Default(),
	}
	i.cond = sync.NewCond(&i.mu)
	return i
}

// EnqueueInstall appends an install job for the unit. If the queue was
// empty the job starts immediately; otherwise it waits for all prior
// jobs to finish. The context is threaded through to the external
// command; a canceled job resolves as a failure so the queue advances.
func (i *Installer) EnqueueInstall(ctx context.Context, unit *Unit) error {
	return i.enqueue(job{op: opInstall, unit: unit, ctx: ctx})
}

// EnqueueUninstall appends an uninstall job for the unit.
func (i *Installer) EnqueueUninstall(ctx context.Context, unit *Unit) error {
	return i.enqueue(job{op: opUninstall, unit: unit, ctx: ctx})
}

func (i *Installer) enqueue(j job) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrInstallerClosed
	}

	i.pending = append(i.pending, j)
	i.logger.Debug("job queued", "op", j.op, "unit", j.unit.ID(), "depth", len(i.pending))

	if !i.running {
		i.running = true
		go i.drain()
	}
	return nil
}

// drain pops and executes jobs until the queue is empty. Exactly one
// drain goroutine exists while the queue is non-empty.
func (i *Installer) drain() {
	for {
		i.mu.Lock()
		if i.closed || len(i.pending) == 0 {
			i.running = false
			i.cond.Broadcast()
			i.mu.Unlock()
			return
		}
		j := i.pending[0]
		i.pending = i.pending[1:]
		i.mu.Unlock()

		i.execute(j)
	}
}

// Wait blocks until the queue has fully drained and no job is running.
func (i *Installer) Wait() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for i.running || len(i.pending) > 0 {
		i.cond.Wait()
	}
}

// Close rejects further jobs and drops pending ones. A job already in
// flight runs to completion.
func (i *Installer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	if n := len(i.pending); n > 0 {
		i.logger.Debug("dropping pending jobs", "count", n)
	}
	i.pending = nil
	if !i.running {
		i.cond.Broadcast()
	}
	return nil
}

// execute runs one job to completion. A job whose unit is not in the
// required starting status is a no-op, defending against stale double
// submission from the caller.
func (i *Installer) execute(j job) {
	switch j.op {
	case opInstall:
		if !j.unit.beginJob(StatusUninstalled, StatusInstalling) {
			i.logger.Debug("skipping install, unit not uninstalled",
				"unit", j.unit.ID(), "status", j.unit.Status())
			return
		}
		if i.installSync(j.ctx, j.unit) {
			j.unit.setStatus(StatusInstalled)
		} else {
			j.unit.setStatus(StatusUninstalled)
		}
	case opUninstall:
		if !j.unit.beginJob(StatusInstalled, StatusUninstalling) {
			i.logger.Debug("skipping uninstall, unit not installed",
				"unit", j.unit.ID(), "status", j.unit.Status())
			return
		}
		if i.uninstallSync(j.ctx, j.unit) {
			j.unit.setStatus(StatusUninstalled)
		} else {
			j.unit.setStatus(StatusInstalled)
		}
	}
}

// installSync performs the blocking install. The provider bundle is
// included only when the provider is absent from a freshly queried
// installed set: other units may already have pulled it in.
func (i *Installer) installSync(ctx context.Context, u *Unit) bool {
	ref := u.Ref()
	defer i.restarter.Restart(context.WithoutCancel(ctx), ref.ProviderID)

	installed, err := ref.Installation.ListInstalledRefs(ctx)
	if err != nil {
		i.logger.Error("unable to snapshot installed refs", "unit", ref.ID, "err", err)
		return false
	}

	argv := []string{"flatpak", "install", "--noninteractive", ref.Remote.Name, ref.BundleID}
	if _, ok := installed[ref.ProviderID]; !ok {
		argv = append(argv, ref.ProviderBundleID)
	}

	i.logger.Debug("installing", "unit", ref.ID, "argv", argv)
	rc, err := i.runner.Run(ctx, argv...)
	if err != nil {
		i.logger.Error("install command failed to run", "unit", ref.ID, "err", err)
		return false
	}
	return rc == 0
}

// uninstallSync performs the blocking uninstall. The provider bundle is
// deliberately left installed: other voices may depend on it.
func (i *Installer) uninstallSync(ctx context.Context, u *Unit) bool {
	ref := u.Ref()
	defer i.restarter.Restart(context.WithoutCancel(ctx), ref.ProviderID)

	argv := []string{"flatpak", "uninstall", "--noninteractive", ref.BundleID}

	i.logger.Debug("uninstalling", "unit", ref.ID, "argv", argv)
	rc, err := i.runner.Run(ctx, argv...)
	if err != nil {
		i.logger.Error("uninstall command failed to run", "unit", ref.ID, "err", err)
		return false
	}
	return rc == 0
}
