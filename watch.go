package devserve

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	fsnotify "gopkg.in/fsnotify.v1"
)

// WatchDir logs filesystem changes beneath root until done is closed. It is
// a development convenience only; responses never depend on it. The watch
// covers root and the directories present when it starts, plus directories
// created while running.
func WatchDir(root string, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := watcher.Add(path); err != nil {
				logrus.Warnf("watch %q: %s", path, err)
			}
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event := <-watcher.Events:
				rel, err := filepath.Rel(root, event.Name)
				if err != nil {
					rel = event.Name
				}
				logrus.Infof("changed: %s (%s)", rel, event.Op)
				if event.Op&fsnotify.Create == fsnotify.Create {
					if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
						if err := watcher.Add(event.Name); err != nil {
							logrus.Warnf("watch %q: %s", event.Name, err)
						}
					}
				}
			case err := <-watcher.Errors:
				logrus.Warnf("watcher: %s", err)
			case <-done:
				return
			}
		}
	}()
	return nil
}
