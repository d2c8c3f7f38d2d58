package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voicekit/voices/internal/voice"
)

var installCmd = &cobra.Command{
	Use:   "install <voice-id>",
	Short: "Install a voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, args[0], true)
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <voice-id>",
	Short: "Remove a voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, args[0], false)
	},
}

func runOperation(cmd *cobra.Command, id string, install bool) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	unit, ok := a.collection.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", voice.ErrUnknownUnit, id)
	}

	target := voice.StatusInstalled
	if !install {
		target = voice.StatusUninstalled
	}
	if unit.Status() == target {
		fmt.Printf("%s is already %s.\n", unit.Name(), target)
		return nil
	}

	unsubscribe := unit.Subscribe(func(old, new voice.Status) {
		fmt.Printf("%s: %s\n", unit.Name(), new)
	})
	defer unsubscribe()

	if install {
		err = unit.Install(ctx)
	} else {
		err = unit.Uninstall(ctx)
	}
	if err != nil {
		return err
	}

	a.installer.Wait()

	if unit.Status() != target {
		return fmt.Errorf("operation failed, %s is %s", unit.Name(), unit.Status())
	}
	return nil
}
