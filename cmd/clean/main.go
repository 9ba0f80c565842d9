package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-scrape-internships/cleaner"
	"github.com/aluiziolira/go-scrape-internships/config"
	"github.com/aluiziolira/go-scrape-internships/pipeline"
	"github.com/aluiziolira/go-scrape-internships/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, level := report.NewLogger(os.Stdout, cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	result, err := cleaner.Run(cfg.JSONPath, pipeline.NewTableWriter(cfg.SheetPath))
	if err != nil {
		slog.Error("cleaning failed", slog.String("input", cfg.JSONPath), slog.Any("error", err))
		os.Exit(1)
	}

	report.CleanSummary(os.Stdout, result)
}
