package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/pipeline"
)

func TestConsoleSinkPlain(t *testing.T) {
	var out bytes.Buffer
	sink := newConsoleSink(&out, false)

	sink.Emit(pipeline.Event{Level: pipeline.LevelHeader, Message: "Welcome to the Theme Link Checker!"})
	sink.Emit(pipeline.Event{Level: pipeline.LevelInfo, Message: "Please enter the name of the theme you want to search for."})
	sink.Emit(pipeline.Event{Level: pipeline.LevelFailure, Message: "No links found in the search results."})

	want := "Welcome to the Theme Link Checker!\n" +
		"Please enter the name of the theme you want to search for.\n" +
		"No links found in the search results.\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestConsoleSinkColored(t *testing.T) {
	var out bytes.Buffer
	sink := newConsoleSink(&out, true)

	sink.Emit(pipeline.Event{Level: pipeline.LevelSuccess, Message: "Valid link: https://alpha.example/wp-content/themes/astra.zip"})

	got := out.String()
	if !strings.Contains(got, "\x1b[32m") {
		t.Fatalf("success line not green: %q", got)
	}
	if !strings.Contains(got, "Valid link: https://alpha.example/wp-content/themes/astra.zip") {
		t.Fatalf("message missing: %q", got)
	}
}

func TestLinePrompter(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTheme   string
		wantConfirm bool
	}{
		{name: "yes", input: "astra\nyes\n", wantTheme: "astra", wantConfirm: true},
		{name: "short yes with crlf", input: "hello elementor\r\nY\r\n", wantTheme: "hello elementor", wantConfirm: true},
		{name: "no", input: "astra\nno\n", wantTheme: "astra", wantConfirm: false},
		{name: "end of input", input: "astra", wantTheme: "astra", wantConfirm: false},
		{name: "empty input", input: "", wantTheme: "", wantConfirm: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newLinePrompter(strings.NewReader(tt.input), &out, false)

			theme, err := p.ThemeName(context.Background())
			if err != nil {
				t.Fatalf("theme name: %v", err)
			}
			if theme != tt.wantTheme {
				t.Fatalf("theme = %q, want %q", theme, tt.wantTheme)
			}

			ok, err := p.Confirm(context.Background(), "Do you want to download the valid files? (yes/no)")
			if err != nil {
				t.Fatalf("confirm: %v", err)
			}
			if ok != tt.wantConfirm {
				t.Fatalf("confirm = %v, want %v", ok, tt.wantConfirm)
			}

			if !strings.Contains(out.String(), "Enter the theme name: ") ||
				!strings.Contains(out.String(), "Do you want to download the valid files? (yes/no): ") {
				t.Fatalf("prompts missing: %q", out.String())
			}
		})
	}
}

func TestLinePrompterCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := newLinePrompter(pr, io.Discard, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.ThemeName(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ThemeName still blocked after cancellation")
	}

	if _, err := p.Confirm(ctx, "Do you want to download the valid files? (yes/no)"); !errors.Is(err, context.Canceled) {
		t.Fatalf("confirm err = %v, want context.Canceled", err)
	}
}

func TestLinePrompterResumesPendingLine(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := newLinePrompter(pr, io.Discard, false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.ThemeName(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}

	go func() {
		_, _ = io.WriteString(pw, "astra\n")
	}()

	theme, err := p.ThemeName(context.Background())
	if err != nil {
		t.Fatalf("theme name: %v", err)
	}
	if theme != "astra" {
		t.Fatalf("theme = %q, want astra", theme)
	}
}

func TestNewSinkUnattended(t *testing.T) {
	var out bytes.Buffer
	sink := newSink(&out, false, true)

	sink.Emit(pipeline.Event{Level: pipeline.LevelSuccess, Message: "Valid link: https://alpha.example/wp-content/themes/astra.zip"})
	sink.Emit(pipeline.Event{Level: pipeline.LevelFailure, Message: "Failed to download: https://beta.example/wp-content/themes/astra.zip"})

	var records []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		records = append(records, record)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["kind"] != "success" || records[0]["level"] != "INFO" {
		t.Fatalf("unexpected success record: %v", records[0])
	}
	if records[1]["kind"] != "failure" || records[1]["level"] != "WARN" {
		t.Fatalf("unexpected failure record: %v", records[1])
	}
}

func TestNewSinkInteractive(t *testing.T) {
	for _, tt := range []struct {
		name      string
		colorize  bool
		assumeYes bool
	}{
		{name: "terminal", colorize: true, assumeYes: true},
		{name: "prompted", colorize: false, assumeYes: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := newSink(io.Discard, tt.colorize, tt.assumeYes).(*consoleSink); !ok {
				t.Fatalf("expected console sink")
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Setenv("THEMEFINDER_OUTPUT_DIR", "/tmp/themes")
	t.Setenv("THEMEFINDER_CACHE_SIZE", "8")

	cfg, err := parseConfig([]string{"-timeout", "3s", "-delay", "0", "-format", "JSON", "-report", "valid.jsonl", "-yes"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutputDir != "/tmp/themes" {
		t.Fatalf("output dir = %q, want env value", cfg.OutputDir)
	}
	if cfg.PageCacheSize != 8 {
		t.Fatalf("cache size = %d, want 8", cfg.PageCacheSize)
	}
	if cfg.Timeout != 3*time.Second || cfg.PageDelay != 0 {
		t.Fatalf("timeout=%v delay=%v", cfg.Timeout, cfg.PageDelay)
	}
	if cfg.ReportFormat != "json" || cfg.ReportFile != "valid.jsonl" || !cfg.AssumeYes {
		t.Fatalf("report=%q/%q yes=%v", cfg.ReportFormat, cfg.ReportFile, cfg.AssumeYes)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("THEMEFINDER_OUTPUT_DIR", "/tmp/themes")

	cfg, err := parseConfig([]string{"-output-dir", "downloads"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutputDir != "downloads" {
		t.Fatalf("output dir = %q, want flag value", cfg.OutputDir)
	}
}

func TestParseConfigInvalidEnv(t *testing.T) {
	t.Setenv("THEMEFINDER_TIMEOUT", "soon")

	if _, err := parseConfig(nil); err == nil {
		t.Fatalf("expected error for invalid THEMEFINDER_TIMEOUT")
	}
}

func TestPrintSummary(t *testing.T) {
	start := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	result := &models.RunResult{
		Theme:           "astra",
		Outcome:         models.OutcomeCompleted,
		Candidates:      make([]models.DownloadLink, 5),
		ValidLinks:      make([]*models.ValidLink, 4),
		DownloadCount:   3,
		FailedDownloads: 1,
		StartTime:       start,
		EndTime:         start.Add(1500 * time.Millisecond),
	}

	var out bytes.Buffer
	printSummary(&out, result, "downloads")

	for _, want := range []string{"astra", "completed", "Valid links:   4", "Downloaded:    3 (failed 1)", "1.5s"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("summary missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	printSummary(&out, &models.RunResult{}, ".")
	if out.Len() != 0 {
		t.Fatalf("summary for unfinished run = %q, want empty", out.String())
	}
}
