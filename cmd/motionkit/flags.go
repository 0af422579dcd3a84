package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/motionkit/internal/config"
	"github.com/alexisbeaulieu97/motionkit/internal/logger"
	"github.com/alexisbeaulieu97/motionkit/internal/report"
)

// epoch is the start of simulated time for headless runs so their output is
// reproducible.
var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func validateScenePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("scene file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve scene path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("scene file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("scene path %s is a directory", abs)
	}

	return nil
}

func loadScene(path string) (*config.Scene, error) {
	if err := validateScenePath(path); err != nil {
		return nil, err
	}
	return config.Parse(path)
}

func newLogger(flags *rootFlags, w io.Writer) (*logger.Logger, error) {
	level := "warn"
	if flags.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true, Writer: w})
}

func newReporter(flags *rootFlags, w io.Writer) (*report.Reporter, error) {
	return report.New(report.Options{
		Writer:  w,
		Level:   "info",
		Format:  flags.logFormat,
		Verbose: flags.verbose,
	})
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
