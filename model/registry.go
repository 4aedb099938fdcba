package model

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrArtifactNotFound means the model file is missing from the expected
	// location.
	ErrArtifactNotFound = errors.New("model artifact not found")
	// ErrArtifactCorrupt means the model file exists but could not be
	// deserialized into a usable pipeline.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
)

// Registry owns the lifecycle of the trained pipeline: it loads the artifact
// at most once per process and hands the same instance to every caller.
// Load failure is cached too; a broken artifact is fixed by replacing the
// file and restarting, never by per-request retries.
type Registry struct {
	path string
	log  *zap.Logger

	once     sync.Once
	loaded   atomic.Bool
	pipeline Pipeline
	err      error

	// load is swappable in tests.
	load func(path string) (Pipeline, error)
}

// NewRegistry creates a registry for the artifact at path. Nothing is read
// until the first Get.
func NewRegistry(path string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		path: path,
		log:  log,
		load: func(path string) (Pipeline, error) {
			return LoadArtifact(path)
		},
	}
}

// Get returns the cached pipeline, loading it on the first call. Concurrent
// first callers block on a single load and all observe the same instance.
func (r *Registry) Get() (Pipeline, error) {
	r.once.Do(func() {
		start := time.Now()
		pipeline, err := r.load(r.path)
		if err != nil {
			r.err = classifyLoadError(r.path, err)
			r.log.Error("model artifact load failed",
				zap.String("path", r.path),
				zap.Error(r.err))
			return
		}
		r.pipeline = pipeline
		r.loaded.Store(true)
		r.log.Info("model artifact loaded",
			zap.String("path", r.path),
			zap.Duration("elapsed", time.Since(start)))
	})
	return r.pipeline, r.err
}

// Loaded reports whether a pipeline is cached without triggering a load.
func (r *Registry) Loaded() bool {
	return r.loaded.Load()
}

// Path returns the configured artifact location.
func (r *Registry) Path() string {
	return r.path
}

func classifyLoadError(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrArtifactCorrupt, path, err)
}
