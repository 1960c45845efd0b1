// Command structdiff compares two JSON documents structurally and prints one
// line per difference.
//
// Usage:
//
//	structdiff diff [--ignore a,b] [--normalize to_snake|to_camel] [--dump] <left.json> <right.json>
//	structdiff normalize [--direction to_snake|to_camel] <file.json>
//
// Use "-" in place of a file to read stdin. Exit code 0 = documents match,
// 1 = differences found, 2 = usage or input error.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
	"github.com/opsmanager-tools/omparity-go/internal/structdiff"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "diff":
		cmdDiff(os.Args[2:])
	case "normalize":
		cmdNormalize(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: structdiff <diff|normalize> [flags] <files>")
	os.Exit(2)
}

func cmdDiff(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	ignore := fs.String("ignore", "", "comma-separated keys to skip at any depth")
	normalize := fs.String("normalize", "", "normalize keys on both sides first: to_snake or to_camel")
	dump := fs.Bool("dump", false, "dump the parsed documents to stderr before diffing")
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	left, err := readJSON(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	right, err := readJSON(fs.Arg(1))
	if err != nil {
		fatal(err)
	}

	if *normalize != "" {
		dir := keyconv.Direction(*normalize)
		if !dir.Valid() {
			fatal(fmt.Errorf("unknown normalize direction %q (use to_snake or to_camel)", *normalize))
		}
		left = keyconv.Normalize(left, dir)
		right = keyconv.Normalize(right, dir)
	}

	if *dump {
		spew.Fdump(os.Stderr, left, right)
	}

	var ig structdiff.Ignore
	if *ignore != "" {
		ig = structdiff.NewIgnore(strings.Split(*ignore, ",")...)
	}

	records := structdiff.Diff(left, right, ig)
	for _, rec := range records {
		fmt.Println(rec)
	}
	if len(records) > 0 {
		os.Exit(1)
	}
}

func cmdNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	direction := fs.String("direction", string(keyconv.ToSnakeCase), "to_snake or to_camel")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	dir := keyconv.Direction(*direction)
	if !dir.Valid() {
		fatal(fmt.Errorf("unknown direction %q (use to_snake or to_camel)", *direction))
	}

	doc, err := readJSON(fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	out, err := json.MarshalIndent(keyconv.Normalize(doc, dir), "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func readJSON(path string) (any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		path = "stdin"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(2)
}
