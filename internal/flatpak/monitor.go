package flatpak

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Monitor watches an installation root's state directory. Bursts of
// filesystem events collapse into a single pending notification.
type Monitor struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newMonitor(dir string) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	m := &Monitor{
		watcher: watcher,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go m.loop()
	return m, nil
}

// Changes returns the notification channel. It is closed when the
// monitor is closed.
func (m *Monitor) Changes() <-chan struct{} {
	return m.changes
}

// Close stops the watch.
func (m *Monitor) Close() error {
	var err error
	m.once.Do(func() {
		close(m.done)
		err = m.watcher.Close()
	})
	return err
}

func (m *Monitor) loop() {
	defer close(m.changes)
	for {
		select {
		case <-m.done:
			return
		case _, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			select {
			case m.changes <- struct{}{}:
			default:
				// Notification already pending.
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("installation watch error", "err", err)
		}
	}
}
