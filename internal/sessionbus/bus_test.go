package sessionbus

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedRunner answers Run and Output with canned results and records
// the last invocation.
type scriptedRunner struct {
	lastArgv []string

	runCode int
	runErr  error

	output    []byte
	outputErr error
}

func (r *scriptedRunner) Run(_ context.Context, argv ...string) (int, error) {
	r.lastArgv = argv
	return r.runCode, r.runErr
}

func (r *scriptedRunner) Output(_ context.Context, argv ...string) ([]byte, error) {
	r.lastArgv = argv
	return r.output, r.outputErr
}

func TestProcessID(t *testing.T) {
	runner := &scriptedRunner{
		output: []byte("method return time=1.0 sender=org.freedesktop.DBus\n   uint32 12345\n"),
	}
	bus := New(runner)

	pid, err := bus.ProcessID(context.Background(), "org.example.Provider")
	if err != nil {
		t.Fatalf("ProcessID() error = %v", err)
	}
	if pid != 12345 {
		t.Errorf("ProcessID() = %d, want 12345", pid)
	}

	argv := strings.Join(runner.lastArgv, " ")
	if !strings.Contains(argv, "GetConnectionUnixProcessID") {
		t.Errorf("unexpected argv: %v", runner.lastArgv)
	}
	if !strings.Contains(argv, "string:org.example.Provider") {
		t.Errorf("service name missing from argv: %v", runner.lastArgv)
	}
}

func TestProcessIDNotRunning(t *testing.T) {
	runner := &scriptedRunner{outputErr: errors.New("exit status 1")}
	bus := New(runner)

	if _, err := bus.ProcessID(context.Background(), "org.example.Provider"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("ProcessID() error = %v, want ErrNotRunning", err)
	}
}

func TestProcessIDUnexpectedReply(t *testing.T) {
	runner := &scriptedRunner{output: []byte("method return time=1.0\n")}
	bus := New(runner)

	if _, err := bus.ProcessID(context.Background(), "org.example.Provider"); err == nil {
		t.Error("expected an error for a reply without a pid")
	}
}

func TestPing(t *testing.T) {
	runner := &scriptedRunner{}
	bus := New(runner)

	if err := bus.Ping(context.Background(), "org.example.Provider"); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	argv := strings.Join(runner.lastArgv, " ")
	if !strings.Contains(argv, "--dest=org.example.Provider") {
		t.Errorf("destination missing from argv: %v", runner.lastArgv)
	}
	if !strings.Contains(argv, "org.freedesktop.DBus.Peer.Ping") {
		t.Errorf("method missing from argv: %v", runner.lastArgv)
	}
}

func TestPingFailures(t *testing.T) {
	bus := New(&scriptedRunner{runCode: 1})
	if err := bus.Ping(context.Background(), "org.example.Provider"); err == nil {
		t.Error("expected an error for a non-zero exit")
	}

	bus = New(&scriptedRunner{runErr: errors.New("binary missing")})
	if err := bus.Ping(context.Background(), "org.example.Provider"); err == nil {
		t.Error("expected an error when the command cannot run")
	}
}
