package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voicekit/voices/internal/voice"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch installation roots and report voice status changes",
	Long: "Keeps running until interrupted, reconciling voice status\n" +
		"whenever an installation root changes on disk. Set VOICES_LOGFILE\n" +
		"to also append events to a log file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		if p := defaultLogPath(); p != "" {
			log.Debug("suggested log location", "path", p)
		}

		start := time.Now()
		var unsubscribes []func()
		for _, u := range a.collection.Units() {
			unit := u
			unsubscribes = append(unsubscribes, unit.Subscribe(func(old, new voice.Status) {
				fmt.Printf("%s: %s -> %s (started %s)\n",
					unit.ID(), old, new, humanize.Time(start))
			}))
		}
		defer func() {
			for _, fn := range unsubscribes {
				fn()
			}
		}()

		fmt.Printf("Watching %d voices. Press Ctrl-C to stop.\n", len(a.collection.Units()))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return nil
	},
}
