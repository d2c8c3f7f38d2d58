package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the speech providers seen during discovery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		for _, p := range a.collection.Providers() {
			if p.ID == "" {
				// All-providers sentinel; only meaningful in filter menus.
				continue
			}
			fmt.Printf("%s\t%s\n", p.ID, p.Name)
		}
		return nil
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages covered by available voices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		names := a.collection.LanguageNames()
		if len(names) > 0 {
			// Skip the all-languages sentinel.
			names = names[1:]
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
