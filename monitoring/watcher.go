package monitoring

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports when the model artifact changes on disk after the
// process started. The registry keeps serving its loaded copy; the log line
// is the operator's cue that a restart is needed to pick up the new file.
// There is deliberately no hot reload.
type ArtifactWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	log     *zap.Logger
}

// WatchArtifact watches the directory containing the artifact and logs any
// replace, rewrite, or removal of the file itself.
func WatchArtifact(path string, log *zap.Logger) (*ArtifactWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the parent directory so replace-by-rename is observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	aw := &ArtifactWatcher{watcher: watcher, path: path, log: log}
	go aw.loop()
	return aw, nil
}

func (aw *ArtifactWatcher) loop() {
	target := filepath.Clean(aw.path)
	for {
		select {
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				aw.log.Warn("model artifact removed from disk; loaded copy remains active until restart",
					zap.String("path", aw.path))
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				aw.log.Warn("model artifact changed on disk; restart to load the new version",
					zap.String("path", aw.path),
					zap.String("op", event.Op.String()))
			}
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.log.Error("artifact watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (aw *ArtifactWatcher) Close() error {
	return aw.watcher.Close()
}
