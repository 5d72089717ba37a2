package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"capgrid/internal/dto"
	"capgrid/internal/service"
	apperrors "capgrid/pkg/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run prints one JSON caption per line. Exit codes: 0 ok, 1 processing error, 2 usage.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.ShowVersion || opts.ShowDiagnose {
		if opts.ShowVersion {
			printVersion(stdout)
		}
		if opts.ShowDiagnose {
			if opts.ShowVersion {
				fmt.Fprintln(stdout)
			}
			printDiagnose(stdout)
		}
		return 0
	}

	if opts.VttPath == "" {
		fmt.Fprintln(stderr, "capgrid: -vtt is required")
		return 2
	}

	svc := &service.Service{Options: service.DefaultOptions()}
	res, err := svc.Process(context.Background(), dto.ProcessCaptionsReq{
		VttPath:         opts.VttPath,
		IntervalSeconds: opts.IntervalSeconds,
		MaxIterations:   opts.MaxIterations,
	}, nil)
	if err != nil {
		fmt.Fprintf(stderr, "capgrid: %s\n", describeError(err))
		return 1
	}

	items := res.Slots
	if opts.FilteredOnly {
		items = res.Filtered
	}
	enc := json.NewEncoder(stdout)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			fmt.Fprintf(stderr, "capgrid: write output: %v\n", err)
			return 1
		}
	}
	return 0
}

func describeError(err error) string {
	switch {
	case apperrors.IsParseError(err):
		return "malformed timestamp: " + err.Error()
	case apperrors.IsPreconditionError(err):
		return "invalid input: " + err.Error()
	default:
		return err.Error()
	}
}
