package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/config"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/parser"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/pipeline"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/scraper"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, level := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := scraper.NewClient(cfg)
	if err != nil {
		slog.Error("initialising client", slog.Any("error", err))
		os.Exit(1)
	}

	var writer pipeline.OutputWriter
	if cfg.ReportFile != "" {
		writer, err = pipeline.NewWriter(cfg.ReportFormat, cfg.ReportFile)
		if err != nil {
			slog.Error("creating report writer", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				slog.Error("close report writer", slog.Any("error", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	colorize := isatty.IsTerminal(os.Stdout.Fd())
	promptOut := io.Writer(os.Stdout)
	if unattended(colorize, cfg.AssumeYes) {
		promptOut = os.Stderr
	}
	extractor := parser.NewExtractor(parser.DefaultSelectors())
	orchestrator, err := pipeline.NewOrchestrator(cfg, pipeline.Components{
		Fetcher:    client,
		Results:    extractor,
		Sites:      extractor,
		Pagination: extractor,
		Validator:  client,
		Downloader: client,
		Prompter:   newLinePrompter(os.Stdin, promptOut, colorize),
		Sink:       newSink(os.Stdout, colorize, cfg.AssumeYes),
		Writer:     writer,
	})
	if err != nil {
		slog.Error("initialising workflow", slog.Any("error", err))
		os.Exit(1)
	}

	result, err := orchestrator.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("run interrupted")
		} else {
			slog.Error("run failed", slog.Any("error", err))
		}
	}

	if writer != nil && len(result.ValidLinks) > 0 {
		if err := writer.Validate(); err != nil {
			slog.Error("report validation failed", slog.Any("error", err))
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(os.Stdout, result, cfg.OutputDir)
}

func parseConfig(args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if value, ok := config.EnvString("THEMEFINDER_SEARCH_URL"); ok {
		cfg.SearchURL = value
	}
	if value, ok := config.EnvString("THEMEFINDER_OUTPUT_DIR"); ok {
		cfg.OutputDir = value
	}
	if value, ok := config.EnvString("THEMEFINDER_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if value, ok, err := config.EnvDuration("THEMEFINDER_TIMEOUT"); err != nil {
		return nil, fmt.Errorf("invalid THEMEFINDER_TIMEOUT: %w", err)
	} else if ok {
		cfg.Timeout = value
	}
	if value, ok, err := config.EnvInt("THEMEFINDER_CACHE_SIZE"); err != nil {
		return nil, fmt.Errorf("invalid THEMEFINDER_CACHE_SIZE: %w", err)
	} else if ok {
		cfg.PageCacheSize = value
	}

	fs := flag.NewFlagSet("themefinder", flag.ContinueOnError)
	fs.StringVar(&cfg.SearchURL, "search-url", cfg.SearchURL, "Theme directory base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout for page fetches and link probes")
	fs.DurationVar(&cfg.DownloadTimeout, "download-timeout", cfg.DownloadTimeout, "Overall timeout per download (0 disables)")
	fs.DurationVar(&cfg.PageDelay, "delay", cfg.PageDelay, "Pause before each page fetch")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for downloaded archives")
	fs.IntVar(&cfg.PageCacheSize, "cache-size", cfg.PageCacheSize, "Pages kept in the in-memory page cache (0 disables)")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write the valid links to this file")
	fs.StringVar(&cfg.ReportFormat, "format", cfg.ReportFormat, "Report format: csv, json, or dual")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	fs.BoolVar(&cfg.AssumeYes, "yes", cfg.AssumeYes, "Download valid files without asking")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.ReportFormat = strings.ToLower(cfg.ReportFormat)
	return cfg, nil
}

func printSummary(out io.Writer, result *models.RunResult, outputDir string) {
	if result == nil || result.Outcome == "" {
		return
	}
	separator := "--------------------------------------------------"
	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintf(out, "  Theme:         %s\n", result.Theme)
	fmt.Fprintf(out, "  Outcome:       %s\n", result.Outcome)
	fmt.Fprintf(out, "  Candidates:    %d\n", len(result.Candidates))
	fmt.Fprintf(out, "  Valid links:   %d\n", len(result.ValidLinks))
	if result.DownloadCount > 0 || result.FailedDownloads > 0 {
		fmt.Fprintf(out, "  Downloaded:    %d (failed %d)\n", result.DownloadCount, result.FailedDownloads)
		fmt.Fprintf(out, "  Output dir:    %s\n", outputDir)
	}
	fmt.Fprintf(out, "  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	fmt.Fprintln(out, separator)
}

func newLogger(w *os.File, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isatty.IsTerminal(w.Fd()) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), level
}
