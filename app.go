package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/voicekit/voices/internal/flatpak"
	"github.com/voicekit/voices/internal/hostexec"
	"github.com/voicekit/voices/internal/sessionbus"
	"github.com/voicekit/voices/internal/voice"
)

// app wires the runner, session bus, installer queue and collection
// together. One installer instance is shared by every unit.
type app struct {
	runner     *hostexec.HostRunner
	installer  *voice.Installer
	collection *voice.Collection
}

// newApp constructs the application and runs discovery.
func newApp(ctx context.Context) (*app, error) {
	timeout, err := time.ParseDuration(viper.GetString("command_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid command_timeout: %w", err)
	}

	runner := hostexec.New(timeout)
	bus := sessionbus.New(runner)
	restarter := voice.NewRestarter(bus, runner)
	installer := voice.NewInstaller(runner, restarter)

	roots, err := flatpak.Roots(runner)
	if err != nil {
		return nil, err
	}

	collection := voice.NewCollection(installer, roots...)
	if err := collection.Discover(ctx); err != nil {
		_ = collection.Close()
		return nil, err
	}

	return &app{
		runner:     runner,
		installer:  installer,
		collection: collection,
	}, nil
}

func (a *app) Close() error {
	_ = a.installer.Close()
	return a.collection.Close()
}
