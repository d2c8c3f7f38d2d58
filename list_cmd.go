package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voicekit/voices/internal/appstream"
	"github.com/voicekit/voices/internal/voice"
)

var (
	listProvider string
	listLanguage string
	listText     string
	listSearch   string
	listVerbose  bool

	statusStyles = map[voice.Status]lipgloss.Style{
		voice.StatusInstalled:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		voice.StatusUninstalled:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		voice.StatusInstalling:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		voice.StatusUninstalling: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}

	nameStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List available voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			filter := voice.NewFilter()
			filter.SetProvider(listProvider)
			filter.SetLanguage(listLanguage)
			filter.SetText(listText)

			units := a.collection.Units()
			if listSearch != "" {
				units = voice.Search(units, listSearch)
			}

			shown := 0
			for _, u := range units {
				if !filter.Match(u) {
					continue
				}
				printUnit(u)
				shown++
			}
			if shown == 0 {
				fmt.Println("No voices matched.")
			}
			return nil
		},
	}
)

func printUnit(u *voice.Unit) {
	badge := u.Status().String()
	if isTerminal() {
		badge = statusStyles[u.Status()].Render(badge)
	}

	name := u.Name()
	if isTerminal() {
		name = nameStyle.Render(name)
	}

	fmt.Printf("%-12s %s\n", badge, name)
	fmt.Printf("             %s\n", u.ID())

	if langs := u.DisplayLanguages(); len(langs) > 0 {
		fmt.Printf("             %s\n", dim(strings.Join(langs, ", ")))
	}
	fmt.Printf("             provider: %s\n", dim(u.ProviderName()))

	if listVerbose {
		ref := u.Ref()
		fmt.Printf("             remote: %s (%s root)\n", dim(ref.Remote.Name), dim(ref.Installation.Name()))
		catalog := filepath.Join(ref.Remote.AppstreamDir, appstream.CatalogFileName)
		if st, err := os.Stat(catalog); err == nil {
			fmt.Printf("             catalog updated %s\n", dim(humanize.Time(st.ModTime())))
		}
	}
	fmt.Println()
}

func dim(s string) string {
	if isTerminal() {
		return dimStyle.Render(s)
	}
	return s
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	listCmd.Flags().StringVar(&listProvider, "provider", "", "only voices from this provider id")
	listCmd.Flags().StringVar(&listLanguage, "language", "", "only voices for this language name")
	listCmd.Flags().StringVar(&listText, "filter", "", "case-insensitive pattern over name, provider and languages")
	listCmd.Flags().StringVar(&listSearch, "search", "", "fuzzy search, best matches first")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show remote and catalog details")
}
