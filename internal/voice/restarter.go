package voice

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/voicekit/voices/internal/hostexec"
	"github.com/voicekit/voices/internal/sessionbus"
)

// Restarter bounces the speech provider service after install and
// uninstall jobs so it picks up the changed voice set. Every failure
// here is logged and swallowed: a restart problem must never affect a
// job's outcome.
type Restarter struct {
	bus    sessionbus.Bus
	runner hostexec.Runner
	logger *log.Logger
}

// NewRestarter creates a Restarter. The kill signal is sent through the
// same runner used for package-manager calls so it crosses the sandbox
// boundary the same way.
func NewRestarter(bus sessionbus.Bus, runner hostexec.Runner) *Restarter {
	return &Restarter{
		bus:    bus,
		runner: runner,
		logger: log.Default(),
	}
}

// Restart terminates the named service if it is running, then pings it
// to trigger on-demand activation.
func (r *Restarter) Restart(ctx context.Context, service string) {
	pid, err := r.bus.ProcessID(ctx, service)
	switch {
	case errors.Is(err, sessionbus.ErrNotRunning):
		r.logger.Debug("provider service not running", "service", service)
	case err != nil:
		r.logger.Warn("unable to look up provider service", "service", service, "err", err)
	default:
		if rc, err := r.runner.Run(ctx, "kill", strconv.Itoa(pid)); err != nil || rc != 0 {
			r.logger.Warn("unable to stop provider service",
				"service", service, "pid", pid, "exitCode", rc, "err", err)
		}
	}

	if err := r.bus.Ping(ctx, service); err != nil {
		r.logger.Debug("provider service ping failed", "service", service, "err", err)
	}
}
