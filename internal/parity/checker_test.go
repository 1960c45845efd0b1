package parity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
)

type fakeAPI struct {
	hosts     []any
	alerts    []any
	hostsErr  error
	alertsErr error
}

func (f *fakeAPI) ListHosts(_ context.Context, _ string) ([]any, error) {
	return f.hosts, f.hostsErr
}

func (f *fakeAPI) ListAlerts(_ context.Context, _ string) ([]any, error) {
	return f.alerts, f.alertsErr
}

// fakeCLI returns a canned payload keyed by the first subcommand argument.
type fakeCLI struct {
	mu       sync.Mutex
	payloads map[string]any
	err      error
	gotArgs  [][]string
}

func (f *fakeCLI) RunJSON(_ context.Context, args ...string) (any, error) {
	f.mu.Lock()
	f.gotArgs = append(f.gotArgs, args)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.payloads[args[0]], nil
}

func parseDocs(t *testing.T, raw string) []any {
	t.Helper()
	var v []any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func parseAny(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func hostsCheck() Check {
	return DefaultChecks()[0]
}

func TestChecker_Run_Pass(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: parseDocs(t, `[
		{"hostname":"node-0.example.com","port":27017,"typeName":"REPLICA_PRIMARY"},
		{"hostname":"node-1.example.com","port":27017,"typeName":"REPLICA_SECONDARY"}
	]`)}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"links":[{"rel":"self"}],"results":[
			{"hostname":"node-0.example.com","port":27017,"typeName":"REPLICA_PRIMARY"},
			{"hostname":"node-1.example.com","port":27017,"typeName":"REPLICA_SECONDARY"}
		],"totalCount":2}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), hostsCheck())

	assert.True(t, res.Passed)
	assert.Empty(t, res.Discrepancies)
	assert.Empty(t, res.Error)
	assert.Equal(t, 2, res.LibraryCount)
	assert.Equal(t, 2, res.CLICount)
}

func TestChecker_Run_ExpectedExtraFiltered(t *testing.T) {
	t.Parallel()
	// The library carries fields mongocli strips from its output.
	api := &fakeAPI{hosts: parseDocs(t, `[
		{"hostname":"node-0.example.com","port":27017,
		 "hidden":false,"lastIndexSizeBytes":4096,"systemInfo":{"memSizeMB":16384}}
	]`)}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"hostname":"node-0.example.com","port":27017}]}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), hostsCheck())

	assert.True(t, res.Passed)
	assert.Empty(t, res.Discrepancies)
	assert.Equal(t, 3, res.ExpectedExtra)
}

func TestChecker_Run_UnexpectedDiff(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: parseDocs(t, `[{"hostname":"node-0.example.com","port":27017}]`)}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"hostname":"node-0.example.com","port":27018}]}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), hostsCheck())

	assert.False(t, res.Passed)
	assert.Equal(t, []string{"[0].port: value mismatch (left=27017, right=27018)"}, res.Discrepancies)
}

func TestChecker_Run_IgnoresLinks(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: parseDocs(t, `[{"hostname":"node-0.example.com","links":[{"rel":"self"}]}]`)}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"hostname":"node-0.example.com"}]}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), hostsCheck())

	assert.True(t, res.Passed)
	assert.Zero(t, res.ExpectedExtra)
}

func TestChecker_Run_PassesProjectFlag(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: []any{}}
	cli := &fakeCLI{payloads: map[string]any{"processes": parseAny(t, `{"results":[]}`)}}

	checker := NewChecker(api, cli, "proj-1", nil)
	checker.Run(context.Background(), hostsCheck())

	require.Len(t, cli.gotArgs, 1)
	assert.Equal(t, []string{"processes", "list", "--projectId", "proj-1"}, cli.gotArgs[0])
}

func TestChecker_Run_CLIError(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: []any{}}
	cli := &fakeCLI{err: errors.New("mongocli ops-manager processes list: exit status 1")}

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), hostsCheck())

	assert.False(t, res.Passed)
	assert.Contains(t, res.Error, "exit status 1")
}

func TestChecker_Run_Normalize(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{hosts: parseDocs(t, `[{"memSizeMB":1}]`)}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"memSizeMB":2}]}`),
	}}

	check := hostsCheck()
	check.Normalize = keyconv.ToSnakeCase

	checker := NewChecker(api, cli, "proj-1", nil)
	res := checker.Run(context.Background(), check)

	assert.Equal(t, []string{"[0].mem_size_mb: value mismatch (left=1, right=2)"}, res.Discrepancies)
}

func TestChecker_RunAll(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		hosts:  parseDocs(t, `[{"hostname":"node-0.example.com","port":27017}]`),
		alerts: parseDocs(t, `[{"id":"alert-1","status":"OPEN"}]`),
	}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"hostname":"node-0.example.com","port":27017}]}`),
		"alerts":    parseAny(t, `{"results":[{"id":"alert-1","status":"OPEN"}]}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	report := checker.RunAll(context.Background(), DefaultChecks())

	require.Len(t, report.Results, 2)
	assert.Equal(t, EndpointHosts, report.Results[0].Endpoint)
	assert.Equal(t, EndpointAlerts, report.Results[1].Endpoint)
	assert.True(t, report.AllPassed)
	assert.False(t, report.HasErrors)
	assert.Len(t, report.RunID, 8)
	assert.Equal(t, "proj-1", report.ProjectID)
	assert.False(t, report.StartedAt.IsZero())
}

func TestChecker_RunAll_ErrorDoesNotAbortOthers(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		hosts:     parseDocs(t, `[{"hostname":"node-0.example.com"}]`),
		alertsErr: errors.New("opsmanager: GET /alerts: unexpected status 500"),
	}
	cli := &fakeCLI{payloads: map[string]any{
		"processes": parseAny(t, `{"results":[{"hostname":"node-0.example.com"}]}`),
	}}

	checker := NewChecker(api, cli, "proj-1", nil)
	report := checker.RunAll(context.Background(), DefaultChecks())

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].Passed)
	assert.Contains(t, report.Results[1].Error, "unexpected status 500")
	assert.True(t, report.HasErrors)
	assert.False(t, report.AllPassed)
}

func TestSplitExpected(t *testing.T) {
	t.Parallel()
	extras := setOf("hidden", "lastIndexSizeBytes")
	records := []string{
		"Missing in Right: [0].hidden",
		"Missing in Right: [0].systemInfo",
		"Missing in Left: [0].hidden",
		"[0].port: value mismatch (left=27017, right=27018)",
	}

	unexpected, expected := splitExpected(records, extras)
	assert.Equal(t, 1, expected)
	assert.Equal(t, []string{
		"Missing in Right: [0].systemInfo",
		"Missing in Left: [0].hidden",
		"[0].port: value mismatch (left=27017, right=27018)",
	}, unexpected)
}

func TestSplitExpected_NoDotKeepsWholeRecord(t *testing.T) {
	t.Parallel()
	// A top-level field has no dot in its path, so the whole record is the
	// candidate segment and never matches a field name.
	unexpected, expected := splitExpected([]string{"Missing in Right: hidden"}, setOf("hidden"))
	assert.Zero(t, expected)
	assert.Len(t, unexpected, 1)
}

func TestUnwrapResults(t *testing.T) {
	t.Parallel()
	wrapped := parseAny(t, `{"links":[],"results":[{"id":1}],"totalCount":1}`)
	assert.Equal(t, parseAny(t, `[{"id":1}]`), unwrapResults(wrapped))

	bare := parseAny(t, `[{"id":1}]`)
	assert.Equal(t, bare, unwrapResults(bare))

	noResults := parseAny(t, `{"id":1}`)
	assert.Equal(t, noResults, unwrapResults(noResults))
}
