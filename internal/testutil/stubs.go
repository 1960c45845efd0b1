// Package testutil provides fixture-backed stubs for tests.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// StubAPI satisfies parity.APIClient using golden fixtures. The fixtures
// hold the library-view payloads (hosts.json, alerts.json), which include
// the fields mongocli strips from its output.
type StubAPI struct {
	FixturesDir string
}

func (s *StubAPI) load(name string) ([]any, error) {
	data, err := os.ReadFile(filepath.Join(s.FixturesDir, name))
	if err != nil {
		return nil, err
	}
	var docs []any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *StubAPI) ListHosts(_ context.Context, _ string) ([]any, error) {
	return s.load("hosts.json")
}

func (s *StubAPI) ListAlerts(_ context.Context, _ string) ([]any, error) {
	return s.load("alerts.json")
}

// GoldenDir returns the absolute path to the tests/golden directory.
// It walks up from the caller's file to find the repo root.
func GoldenDir() string {
	// testutil/ is at internal/testutil/, golden is at tests/golden/
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "golden")
}
