package parity

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
	"github.com/opsmanager-tools/omparity-go/internal/structdiff"
)

// suiteFile is the on-disk TOML shape of a validation suite.
//
//	[[checks]]
//	endpoint = "hosts"
//	expected_extra = ["lastIndexSizeBytes"]
//	ignore = ["links", "Links"]
//	normalize = "to_snake"
type suiteFile struct {
	Checks []suiteCheck `toml:"checks"`
}

type suiteCheck struct {
	Endpoint      string   `toml:"endpoint"`
	CLIArgs       []string `toml:"cli_args"`
	ExpectedExtra []string `toml:"expected_extra"`
	Ignore        []string `toml:"ignore"`
	Normalize     string   `toml:"normalize"`
}

// LoadSuite reads a TOML validation suite. Each entry starts from the
// default check for its endpoint; fields present in the file override the
// default, and an explicitly empty list clears it. Fields absent from the
// file keep the default (absent lists decode as nil, empty ones do not).
func LoadSuite(path string) ([]Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("suite: read %s: %w", path, err)
	}

	var file suiteFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("suite: parse %s: %w", path, err)
	}
	if len(file.Checks) == 0 {
		return nil, fmt.Errorf("suite: %s defines no checks", path)
	}

	defaults := make(map[Endpoint]Check)
	for _, check := range DefaultChecks() {
		defaults[check.Endpoint] = check
	}

	checks := make([]Check, 0, len(file.Checks))
	for _, entry := range file.Checks {
		endpoint := Endpoint(entry.Endpoint)
		if !endpoint.Valid() {
			return nil, fmt.Errorf("suite: unknown endpoint %q", entry.Endpoint)
		}

		check := defaults[endpoint]
		if entry.CLIArgs != nil {
			check.CLIArgs = entry.CLIArgs
		}
		if entry.ExpectedExtra != nil {
			check.ExpectedExtra = setOf(entry.ExpectedExtra...)
		}
		if entry.Ignore != nil {
			check.Ignore = structdiff.NewIgnore(entry.Ignore...)
		}
		if entry.Normalize != "" {
			dir := keyconv.Direction(entry.Normalize)
			if !dir.Valid() {
				return nil, fmt.Errorf("suite: unknown normalize direction %q", entry.Normalize)
			}
			check.Normalize = dir
		}
		checks = append(checks, check)
	}
	return checks, nil
}
