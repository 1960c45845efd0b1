// om-validate fetches the same Ops Manager endpoints through the REST API
// client and through mongocli, diffs the two views structurally, and reports
// discrepancies the known field differences do not explain.
// Exit code 0 = all endpoints match. Exit code 1 = discrepancies or check
// errors. Exit code 2 = configuration or environment error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/opsmanager-tools/omparity-go/internal/config"
	"github.com/opsmanager-tools/omparity-go/internal/mcli"
	"github.com/opsmanager-tools/omparity-go/internal/observability"
	"github.com/opsmanager-tools/omparity-go/internal/opsmanager"
	"github.com/opsmanager-tools/omparity-go/internal/parity"
	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	endpoint := flag.String("endpoint", "all", "endpoint to validate: hosts, alerts, or all")
	baseURL := flag.String("base-url", cfg.BaseURL, "Ops Manager base URL")
	publicKey := flag.String("public-key", cfg.PublicKey, "API public key")
	privateKey := flag.String("private-key", cfg.PrivateKey, "API private key")
	orgID := flag.String("org-id", cfg.OrgID, "organization ID")
	projectID := flag.String("project-id", cfg.ProjectID, "project ID to validate")
	suitePath := flag.String("suite", "", "TOML validation suite (defaults to the built-in checks)")
	mcliBin := flag.String("mcli-bin", cfg.MongoCLIBin, "mongocli binary")
	timeout := flag.Duration("timeout", cfg.RequestTimeout, "per-request timeout")
	insecure := flag.Bool("insecure", cfg.InsecureSkipVerify, "skip TLS certificate verification")
	jsonOut := flag.Bool("json", false, "print the report as JSON instead of text")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	cfg.BaseURL = *baseURL
	cfg.PublicKey = *publicKey
	cfg.PrivateKey = *privateKey
	cfg.OrgID = *orgID
	cfg.ProjectID = *projectID
	cfg.MongoCLIBin = *mcliBin
	cfg.RequestTimeout = *timeout
	cfg.InsecureSkipVerify = *insecure
	cfg.LogLevel = *logLevel

	logger := observability.InitLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		fmt.Fprintln(os.Stderr, "Set environment variables or use command-line flags:")
		fmt.Fprintln(os.Stderr, "  OM_BASE_URL, OM_PUBLIC_KEY, OM_PRIVATE_KEY, OM_ORG_ID, OM_PROJECT_ID")
		os.Exit(2)
	}

	checks := parity.DefaultChecks()
	if *suitePath != "" {
		checks, err = parity.LoadSuite(*suitePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(2)
		}
	}
	if *endpoint != "all" {
		checks, err = selectEndpoint(checks, parity.Endpoint(*endpoint))
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := observability.InitTracer(ctx, "om-validate")
	if err != nil {
		logger.Warn("tracer init failed", "error", err)
	} else {
		defer shutdown(ctx)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics init failed", "error", err)
	}

	limiter := ratelimit.NewSourceLimiter(ratelimit.SourceRates{
		API: cfg.APIRateLimit,
		CLI: cfg.CLIRateLimit,
	})

	cli := mcli.NewBinaryRunner(cfg.MongoCLIBin, cfg.MongoCLIEnv(), cfg.RequestTimeout, limiter)
	if err := cli.Available(ctx); err != nil {
		logger.Error("mongocli not available", "error", err)
		fmt.Fprintln(os.Stderr, "error: mongocli not found. Install from:")
		fmt.Fprintln(os.Stderr, "  https://www.mongodb.com/docs/mongocli/stable/install/")
		os.Exit(2)
	}

	api := opsmanager.New(opsmanager.Config{
		BaseURL:            cfg.BaseURL,
		PublicKey:          cfg.PublicKey,
		PrivateKey:         cfg.PrivateKey,
		Timeout:            cfg.RequestTimeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, limiter)

	logger.Info("starting validation",
		"base_url", cfg.BaseURL, "project_id", cfg.ProjectID, "checks", len(checks))

	checker := parity.NewChecker(api, cli, cfg.ProjectID, metrics)
	report := checker.RunAll(ctx, checks)

	if *jsonOut {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Error("marshal report failed", "error", err)
			os.Exit(2)
		}
		fmt.Println(string(out))
	} else {
		report.WriteText(os.Stdout)
	}

	switch {
	case report.HasErrors:
		logger.Error("validation errored", "run_id", report.RunID)
		os.Exit(1)
	case !report.AllPassed:
		logger.Warn("discrepancies detected", "run_id", report.RunID)
		os.Exit(1)
	}
	logger.Info("all endpoints match", "run_id", report.RunID)
}

func selectEndpoint(checks []parity.Check, endpoint parity.Endpoint) ([]parity.Check, error) {
	if !endpoint.Valid() {
		return nil, fmt.Errorf("unknown endpoint %q (use hosts, alerts, or all)", endpoint)
	}
	for _, check := range checks {
		if check.Endpoint == endpoint {
			return []parity.Check{check}, nil
		}
	}
	return nil, fmt.Errorf("endpoint %q is not in the active suite", endpoint)
}
