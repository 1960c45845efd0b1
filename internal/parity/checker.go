// Package parity validates that the Ops Manager API client and mongocli
// agree on what a deployment looks like. Each check fetches the same
// endpoint through both sources, diffs the raw documents, and filters the
// differences known to be intentional.
package parity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
	"github.com/opsmanager-tools/omparity-go/internal/observability"
	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
	"github.com/opsmanager-tools/omparity-go/internal/structdiff"
)

// APIClient is the library-side data source.
type APIClient interface {
	ListHosts(ctx context.Context, projectID string) ([]any, error)
	ListAlerts(ctx context.Context, projectID string) ([]any, error)
}

// CLIRunner is the reference-side data source.
type CLIRunner interface {
	RunJSON(ctx context.Context, args ...string) (any, error)
}

// Checker runs parity checks for one project.
type Checker struct {
	api       APIClient
	cli       CLIRunner
	projectID string
	metrics   *observability.Metrics
}

// NewChecker creates a Checker. metrics may be nil, in which case no
// instruments are recorded.
func NewChecker(api APIClient, cli CLIRunner, projectID string, metrics *observability.Metrics) *Checker {
	return &Checker{
		api:       api,
		cli:       cli,
		projectID: projectID,
		metrics:   metrics,
	}
}

// Run executes a single check. Source failures never panic or abort the
// run; they land in CheckResult.Error so a multi-endpoint report can still
// cover the remaining endpoints.
func (c *Checker) Run(ctx context.Context, check Check) CheckResult {
	start := time.Now()
	res := c.run(ctx, check)
	res.DurationMS = time.Since(start).Milliseconds()

	if c.metrics != nil {
		c.metrics.RecordCheck(ctx, string(check.Endpoint), res.Passed, time.Since(start))
		c.metrics.RecordDiscrepancies(ctx, string(check.Endpoint), len(res.Discrepancies))
	}
	return res
}

func (c *Checker) run(ctx context.Context, check Check) CheckResult {
	res := CheckResult{Endpoint: check.Endpoint}

	library, err := c.fetchLibrary(ctx, check.Endpoint)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.LibraryCount = len(library)

	if c.metrics != nil {
		c.metrics.RecordSourceCall(ctx, ratelimit.SourceCLI)
	}
	args := append(slices.Clone(check.CLIArgs), "--projectId", c.projectID)
	cliPayload, err := c.cli.RunJSON(ctx, args...)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	cliDocs := unwrapResults(cliPayload)
	if docs, ok := cliDocs.([]any); ok {
		res.CLICount = len(docs)
	}

	var left any = library
	right := cliDocs
	if check.Normalize.Valid() {
		left = keyconv.Normalize(left, check.Normalize)
		right = keyconv.Normalize(right, check.Normalize)
	}

	records := structdiff.Diff(left, right, check.Ignore)
	res.Discrepancies, res.ExpectedExtra = splitExpected(records, check.ExpectedExtra)
	res.Passed = len(res.Discrepancies) == 0
	return res
}

// RunAll executes every check concurrently and assembles a report.
// Results keep the order of the checks regardless of completion order.
func (c *Checker) RunAll(ctx context.Context, checks []Check) *Report {
	report := &Report{
		RunID:     runID(),
		StartedAt: time.Now().UTC(),
		ProjectID: c.projectID,
		Results:   make([]CheckResult, len(checks)),
	}

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			report.Results[i] = c.Run(ctx, check)
			return nil
		})
	}
	_ = g.Wait() // goroutines report failures through CheckResult.Error

	report.AllPassed = true
	for _, res := range report.Results {
		if res.Error != "" {
			report.HasErrors = true
			report.AllPassed = false
		}
		if !res.Passed {
			report.AllPassed = false
		}
	}
	return report
}

func (c *Checker) fetchLibrary(ctx context.Context, endpoint Endpoint) ([]any, error) {
	if c.metrics != nil {
		c.metrics.RecordSourceCall(ctx, ratelimit.SourceAPI)
	}
	switch endpoint {
	case EndpointHosts:
		return c.api.ListHosts(ctx, c.projectID)
	case EndpointAlerts:
		return c.api.ListAlerts(ctx, c.projectID)
	}
	return nil, fmt.Errorf("parity: unknown endpoint %q", endpoint)
}

// unwrapResults strips the paged envelope ({"results": [...], ...}) that
// mongocli prints for list commands, leaving the bare document array.
func unwrapResults(payload any) any {
	if page, ok := payload.(map[string]any); ok {
		if results, ok := page["results"]; ok {
			return results
		}
	}
	return payload
}

// splitExpected partitions diff records into unexpected discrepancies and
// a count of expected ones. A record is expected when it reports a field
// missing on the CLI side and the field's final path segment is in the
// check's ExpectedExtra set.
func splitExpected(records []string, expectedExtra map[string]struct{}) (unexpected []string, expected int) {
	for _, rec := range records {
		if strings.Contains(rec, "Missing in Right:") {
			field := rec[strings.LastIndexByte(rec, '.')+1:]
			if _, ok := expectedExtra[field]; ok {
				expected++
				continue
			}
		}
		unexpected = append(unexpected, rec)
	}
	return unexpected, expected
}

func runID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
