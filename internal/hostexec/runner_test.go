package hostexec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func testRunner() *HostRunner {
	return &HostRunner{
		defaultTimeout: 30 * time.Second,
		logger:         log.Default(),
	}
}

func TestDetectPrefix(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "flatpak-info")
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		infoPath string
		verify   func([]string) bool
		want     bool
	}{
		{"no marker file", filepath.Join(t.TempDir(), "missing"), nil, false},
		{"marker without verifier", marker, nil, true},
		{"marker and verifier accepts", marker, func([]string) bool { return true }, true},
		{"marker but verifier rejects", marker, func([]string) bool { return false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := DetectPrefix(tt.infoPath, tt.verify)
			if got := prefix != nil; got != tt.want {
				t.Errorf("DetectPrefix() = %v, want prefix: %v", prefix, tt.want)
			}
			if tt.want && (len(prefix) != 2 || prefix[0] != "flatpak-spawn") {
				t.Errorf("prefix = %v", prefix)
			}
		})
	}
}

func TestRunExitCodes(t *testing.T) {
	r := testRunner()

	tests := []struct {
		name string
		argv []string
		want int
	}{
		{"success", []string{"true"}, 0},
		{"failure", []string{"false"}, 1},
		{"specific code", []string{"sh", "-c", "exit 7"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := r.Run(context.Background(), tt.argv...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if rc != tt.want {
				t.Errorf("Run() = %d, want %d", rc, tt.want)
			}
		})
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := testRunner()
	if _, err := r.Run(context.Background(), "definitely-not-a-real-binary-2e1a"); err == nil {
		t.Error("expected an error for a missing binary")
	}
}

func TestRunEmptyCommand(t *testing.T) {
	r := testRunner()
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected an error for an empty command")
	}
}

func TestRunCanceledContext(t *testing.T) {
	r := testRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, "sleep", "10"); err == nil {
		t.Error("expected an error when the context is already canceled")
	}
}

// TestRunCancellationMidRunIsError tests that a process killed by a
// mid-run cancellation surfaces the cancellation as an error rather
// than as a signal exit code.
func TestRunCancellationMidRunIsError(t *testing.T) {
	r := testRunner()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if _, err := r.Run(ctx, "sleep", "10"); err == nil {
		t.Error("expected an error when the context is canceled mid-run")
	}
}

func TestOutput(t *testing.T) {
	r := testRunner()

	out, err := r.Output(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello" {
		t.Errorf("Output() = %q, want hello", got)
	}
}

func TestOutputNonZeroExitIsError(t *testing.T) {
	r := testRunner()
	if _, err := r.Output(context.Background(), "false"); err == nil {
		t.Error("expected an error for a non-zero exit")
	}
}
