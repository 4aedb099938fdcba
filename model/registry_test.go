package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func writeTestArtifact(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(testPipeline())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegistryLoadsOnce(t *testing.T) {
	registry := NewRegistry("unused", nil)

	var loads int32
	pipeline := testPipeline()
	registry.load = func(string) (Pipeline, error) {
		atomic.AddInt32(&loads, 1)
		return pipeline, nil
	}

	const callers = 32
	results := make([]Pipeline, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := registry.Get()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = p
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected exactly one load, got %d", got)
	}
	for i, p := range results {
		if p != Pipeline(pipeline) {
			t.Fatalf("caller %d observed a different pipeline instance", i)
		}
	}
	if !registry.Loaded() {
		t.Fatal("expected registry to report loaded")
	}
}

func TestRegistryLoadsFromDisk(t *testing.T) {
	registry := NewRegistry(writeTestArtifact(t), nil)

	p, err := registry.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := p.Infer(Row{"x": 3.0, "c": "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}

	again, err := registry.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != p {
		t.Fatal("expected the cached instance on the second call")
	}
}

func TestRegistryMissingArtifact(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "nope.json"), nil)

	for i := 0; i < 2; i++ {
		_, err := registry.Get()
		if !errors.Is(err, ErrArtifactNotFound) {
			t.Fatalf("call %d: expected ErrArtifactNotFound, got %v", i, err)
		}
	}
	if registry.Loaded() {
		t.Fatal("registry should not report loaded")
	}
}

func TestRegistryCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("not a pipeline"), 0o600); err != nil {
		t.Fatal(err)
	}
	registry := NewRegistry(path, nil)

	_, err := registry.Get()
	if !errors.Is(err, ErrArtifactCorrupt) {
		t.Fatalf("expected ErrArtifactCorrupt, got %v", err)
	}
}
