package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"capgrid/config"
	"capgrid/internal/appdirs"
	"capgrid/internal/caption"
	"capgrid/internal/deps"
	"capgrid/log"

	"github.com/samber/lo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliOptions struct {
	VttPath         string
	IntervalSeconds float64
	MaxIterations   int
	FilteredOnly    bool
	ShowVersion     bool
	ShowDiagnose    bool
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	flags := flag.NewFlagSet("capgrid", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&opts.VttPath, "vtt", "", "WebVTT file to read")
	flags.Float64Var(&opts.IntervalSeconds, "interval", config.Conf.App.IntervalSeconds, "resample interval in seconds")
	flags.IntVar(&opts.MaxIterations, "max-iterations", caption.DefaultMaxIterations, "filter pass limit")
	flags.BoolVar(&opts.FilteredOnly, "filtered", false, "print the filtered captions instead of the resampled slots")
	flags.BoolVar(&opts.ShowVersion, "version", false, "print version information")
	flags.BoolVar(&opts.ShowDiagnose, "diagnose", false, "print runtime diagnostics")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose(w io.Writer) {
	fmt.Fprintf(w, "runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "version: %s\n", version)

	if wd, err := os.Getwd(); err == nil {
		fmt.Fprintf(w, "working_dir: %s\n", wd)
	} else {
		fmt.Fprintf(w, "working_dir: <error: %v>\n", err)
	}

	if dirs, err := appdirs.Resolve(); err == nil {
		fmt.Fprintf(w, "portable: %t\n", dirs.Portable)
		printPath(w, "config", lo.Ternary(dirs.ConfigFile != "", dirs.ConfigFile, filepath.Join("config", "config.toml")))
		printPath(w, "output", dirs.JobRootDir())
		printPath(w, "database", dirs.DBFile())
	} else {
		fmt.Fprintf(w, "appdirs: <error: %v>\n", err)
	}

	if logDir, err := log.ResolveLogDir(); err == nil {
		printPath(w, "effective_log_dir", logDir)
	} else {
		fmt.Fprintf(w, "path.effective_log_dir: <error: %v>\n", err)
	}

	fmt.Fprintln(w, deps.FormatDependencyReport(deps.ResolveDependencyInventory(config.Conf.Frames.FfmpegPath)))
}

func printPath(w io.Writer, name, value string) {
	absPath, err := filepath.Abs(value)
	if err != nil {
		fmt.Fprintf(w, "path.%s: %s (abs_error=%v)\n", name, value, err)
		return
	}

	if _, err = os.Stat(absPath); err == nil {
		fmt.Fprintf(w, "path.%s: %s (exists)\n", name, absPath)
		return
	}
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "path.%s: %s (missing)\n", name, absPath)
		return
	}

	fmt.Fprintf(w, "path.%s: %s (error=%v)\n", name, absPath, err)
}
