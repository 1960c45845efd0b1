package parity

import (
	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
	"github.com/opsmanager-tools/omparity-go/internal/structdiff"
)

// Endpoint identifies an Ops Manager list endpoint under parity check.
type Endpoint string

const (
	EndpointHosts  Endpoint = "hosts"
	EndpointAlerts Endpoint = "alerts"
)

// Valid reports whether the endpoint is a known value.
func (e Endpoint) Valid() bool {
	switch e {
	case EndpointHosts, EndpointAlerts:
		return true
	}
	return false
}

// Check describes a single endpoint parity check: how to fetch each side
// and which differences are expected.
type Check struct {
	Endpoint Endpoint

	// CLIArgs are the mongocli ops-manager subcommand arguments. The
	// --projectId flag is appended at run time.
	CLIArgs []string

	// ExpectedExtra names fields the library returns but mongocli strips
	// from its output. These are not errors, the library is just more
	// complete. A record for a field missing on the CLI side is filtered
	// when its final path segment is in this set.
	ExpectedExtra map[string]struct{}

	// Ignore lists keys skipped entirely during the diff.
	Ignore structdiff.Ignore

	// Normalize optionally converts keys on both sides before diffing.
	// The zero value leaves keys untouched; both sources emit camelCase,
	// so checks normally run without it.
	Normalize keyconv.Direction
}

// DefaultChecks returns the standard validation suite: one check per
// supported endpoint, with the field sets known to differ between the
// library and mongocli.
func DefaultChecks() []Check {
	return []Check{
		{
			Endpoint: EndpointHosts,
			CLIArgs:  []string{"processes", "list"},
			ExpectedExtra: setOf(
				"lastIndexSizeBytes", "hidden", "lowUlimit", "systemInfo",
				"lastDataSizeBytes", "slaveDelaySec", "hiddenSecondary",
			),
			Ignore: structdiff.NewIgnore("links", "Links"),
		},
		{
			Endpoint:      EndpointAlerts,
			CLIArgs:       []string{"alerts", "list"},
			ExpectedExtra: setOf("orgId", "hostId"),
			Ignore:        structdiff.NewIgnore("links", "Links"),
		},
	}
}

func setOf(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
