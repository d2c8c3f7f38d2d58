// Package sessionbus provides the two session-bus operations the service
// restarter needs: resolving the pid owning a bus name, and pinging a
// name to trigger its activation.
package sessionbus

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/voicekit/voices/internal/hostexec"
)

// ErrNotRunning is returned when a bus name has no owner.
var ErrNotRunning = errors.New("service is not running")

// Bus is the narrow session-bus surface used by the restarter.
type Bus interface {
	// ProcessID returns the pid owning the named service, or
	// ErrNotRunning if the name has no owner.
	ProcessID(ctx context.Context, name string) (int, error)

	// Ping sends a liveness probe to the named service, activating it
	// on demand if it supports activation.
	Ping(ctx context.Context, name string) error
}

// DBusSend implements Bus by shelling out to dbus-send through the host
// runner, so bus calls cross the sandbox boundary the same way package
// manager calls do.
type DBusSend struct {
	runner hostexec.Runner
}

// New creates a DBusSend bus.
func New(runner hostexec.Runner) *DBusSend {
	return &DBusSend{runner: runner}
}

// pidReply matches the uint32 payload of a GetConnectionUnixProcessID reply.
var pidReply = regexp.MustCompile(`uint32\s+(\d+)`)

// ProcessID implements Bus.
func (b *DBusSend) ProcessID(ctx context.Context, name string) (int, error) {
	out, err := b.runner.Output(ctx,
		"dbus-send", "--session", "--print-reply",
		"--dest=org.freedesktop.DBus", "/", "org.freedesktop.DBus.GetConnectionUnixProcessID",
		"string:"+name,
	)
	if err != nil {
		// The bus answers with an error reply (non-zero exit) when the
		// name has no owner.
		return 0, ErrNotRunning
	}

	match := pidReply.FindSubmatch(out)
	if match == nil {
		return 0, fmt.Errorf("unexpected reply for %s: %q", name, out)
	}
	pid, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, fmt.Errorf("unexpected pid for %s: %w", name, err)
	}
	return pid, nil
}

// Ping implements Bus.
func (b *DBusSend) Ping(ctx context.Context, name string) error {
	rc, err := b.runner.Run(ctx,
		"dbus-send", "--session", "--print-reply",
		"--dest="+name, "/", "org.freedesktop.DBus.Peer.Ping",
	)
	if err != nil {
		return fmt.Errorf("unable to ping %s: %w", name, err)
	}
	if rc != 0 {
		return fmt.Errorf("ping of %s failed with exit code %d", name, rc)
	}
	return nil
}
