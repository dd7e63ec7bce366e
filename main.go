// Package main implements the main entry point for a Mega Drive / Genesis cartridge loader
package main

import (
	"errors"
	"os"

	"github.com/retroenv/mdcart/internal/cli"
	"github.com/retroenv/mdcart/internal/config"
	"github.com/retroenv/mdcart/internal/fileprocessor"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, busOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	failed := false
	for _, file := range files {
		opts.Input = file
		if err := fileprocessor.ProcessFile(logger, opts, busOptions, os.Stdout); err != nil {
			logger.Error("Loading cartridge failed", log.String("file", file), log.Err(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
