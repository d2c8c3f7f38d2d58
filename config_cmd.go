package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# enable debug logging
debug: false

# timeout applied to every external command invocation.
# installs can take a while; keep this generous.
command_timeout: "30m"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the voices config file",
	Long:    "Edit the voices config file. EDITOR determines which editor to use. If the config file doesn't exist, it will be created.",
	Example: "voices config\nvoices config --config path/to/voices.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Voices", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run editor: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("could not create configuration directory: %w", err)
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat configuration file: %w", err)
	}
	return nil
}
