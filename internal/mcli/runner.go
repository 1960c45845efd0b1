// Package mcli shells out to the mongocli binary, the reference source for
// parity checks.
package mcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
)

// Runner is the interface for invoking mongocli.
type Runner interface {
	RunJSON(ctx context.Context, args ...string) (any, error)
	Available(ctx context.Context) error
}

// BinaryRunner shells out to the mongocli binary. Every command runs under
// the ops-manager subcommand with -o json appended, so output is always
// machine-readable.
type BinaryRunner struct {
	binaryPath string
	extraEnv   []string
	timeout    time.Duration
	limiter    *ratelimit.SourceLimiter
}

// NewBinaryRunner creates a BinaryRunner that invokes the given binary path.
// extraEnv entries ("KEY=value") are appended to the current process
// environment, which is how the MCLI_* credentials reach mongocli. The
// limiter may be nil, in which case launches are not throttled.
func NewBinaryRunner(binaryPath string, extraEnv []string, timeout time.Duration, limiter *ratelimit.SourceLimiter) *BinaryRunner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &BinaryRunner{
		binaryPath: binaryPath,
		extraEnv:   extraEnv,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// RunJSON runs `mongocli ops-manager <args...> -o json` and parses stdout.
func (r *BinaryRunner) RunJSON(ctx context.Context, args ...string) (any, error) {
	label := strings.Join(args, " ")

	out, err := r.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("mongocli ops-manager %s: %w", label, err)
	}

	var payload any
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("mongocli ops-manager %s: parse JSON: %w", label, err)
	}
	return payload, nil
}

// Available checks that the mongocli binary can be executed at all by
// running `mongocli --version`.
func (r *BinaryRunner) Available(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.binaryPath, "--version")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mongocli: not available at %q: %w (stderr: %s)", r.binaryPath, err, stderr.String())
	}
	return nil
}

func (r *BinaryRunner) run(ctx context.Context, args []string) ([]byte, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, ratelimit.SourceCLI); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	full := append([]string{"ops-manager"}, args...)
	full = append(full, "-o", "json")

	cmd := exec.CommandContext(ctx, r.binaryPath, full...)
	cmd.Env = append(os.Environ(), r.extraEnv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w (stderr: %s)", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
