// Package hostexec runs blocking commands on the host, escaping the
// application sandbox when one is detected.
package hostexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

const flatpakInfoPath = "/.flatpak-info"

// spawnPrefix is prepended to every command when running inside a
// flatpak sandbox so the command executes on the host.
var spawnPrefix = []string{"flatpak-spawn", "--host"}

// Runner executes a command to completion and reports its exit code.
// Implementations must be safe for use from multiple goroutines.
type Runner interface {
	// Run executes argv and returns the process exit code. A non-zero
	// exit code is not an error; err is reserved for failures to run
	// the command at all (binary missing, context canceled).
	Run(ctx context.Context, argv ...string) (int, error)

	// Output executes argv and returns its stdout. A non-zero exit
	// code is reported as an error.
	Output(ctx context.Context, argv ...string) ([]byte, error)
}

// HostRunner is the default Runner. It detects a sandboxed environment
// once at construction time and silently falls back to direct execution
// if the escape prefix cannot be verified.
type HostRunner struct {
	prefix         []string
	defaultTimeout time.Duration
	logger         *log.Logger
}

// New creates a HostRunner, probing for a sandbox marker file.
func New(timeout time.Duration) *HostRunner {
	r := &HostRunner{
		defaultTimeout: timeout,
		logger:         log.Default(),
	}
	r.prefix = DetectPrefix(flatpakInfoPath, r.verifyPrefix)
	return r
}

// DetectPrefix returns the sandbox escape prefix if infoPath exists and
// verify confirms the prefix actually works, otherwise nil.
func DetectPrefix(infoPath string, verify func(prefix []string) bool) []string {
	if _, err := os.Stat(infoPath); err != nil {
		return nil
	}
	if verify != nil && !verify(spawnPrefix) {
		return nil
	}
	return spawnPrefix
}

// verifyPrefix checks that commands can actually be spawned through the
// prefix. Mirrors the probe the desktop app performs at startup.
func (r *HostRunner) verifyPrefix(prefix []string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	argv := append(append([]string{}, prefix...), "which", "which")
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		r.logger.Debug("sandbox escape prefix unusable, running unprefixed", "err", err)
		return false
	}
	return true
}

// Prefix returns the detected command prefix. Empty when running
// directly on the host.
func (r *HostRunner) Prefix() []string {
	return append([]string{}, r.prefix...)
}

// Run implements Runner.
func (r *HostRunner) Run(ctx context.Context, argv ...string) (int, error) {
	cmd, cancel, err := r.command(ctx, argv)
	if err != nil {
		return -1, err
	}
	defer cancel()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	r.logger.Debug("host command finished", "argv", argv, "duration", time.Since(start))

	if runErr == nil {
		return 0, nil
	}
	// A canceled context kills the process by signal; report the
	// cancellation, not the signal exit.
	if ctx.Err() != nil {
		return -1, fmt.Errorf("host command canceled: %w", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if s := stderr.String(); s != "" {
			r.logger.Debug("host command stderr", "argv", argv, "stderr", s)
		}
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run host command: %w", runErr)
}

// Output implements Runner.
func (r *HostRunner) Output(ctx context.Context, argv ...string) ([]byte, error) {
	cmd, cancel, err := r.command(ctx, argv)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("host command canceled: %w", ctx.Err())
		}
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("host command failed: %w\nstderr: %s", err, s)
		}
		return nil, fmt.Errorf("host command failed: %w", err)
	}
	return stdout.Bytes(), nil
}

func (r *HostRunner) command(ctx context.Context, argv []string) (*exec.Cmd, context.CancelFunc, error) {
	if len(argv) == 0 {
		return nil, nil, errors.New("empty command")
	}

	cancel := func() {}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && r.defaultTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.defaultTimeout)
	}

	full := append(append([]string{}, r.prefix...), argv...)
	return exec.CommandContext(ctx, full[0], full[1:]...), cancel, nil
}
