// Package pipeline runs the theme search workflow from the search page to
// the optional downloads.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/config"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/parser"
)

// Fetcher retrieves a page. ok is false when the page is absent.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (content string, ok bool)
}

// ResultExtractor finds theme detail links on a search result page.
type ResultExtractor interface {
	ExtractLinks(content string) []string
}

// SiteExtractor builds download links from a theme detail page.
type SiteExtractor interface {
	ExtractThemeWebsites(content, theme string) []models.DownloadLink
}

// PaginationExtractor finds further pages of a theme detail page.
type PaginationExtractor interface {
	ExtractPaginationLinks(content string) []string
}

// Validator filters candidate links down to the reachable ones.
type Validator interface {
	CheckLinks(ctx context.Context, links []models.DownloadLink, onValid func(*models.ValidLink)) []*models.ValidLink
}

// Downloader saves one URL locally and returns the written path.
type Downloader interface {
	DownloadFile(ctx context.Context, url string) (string, error)
}

// Components wires the workflow. Writer is optional.
type Components struct {
	Fetcher    Fetcher
	Results    ResultExtractor
	Sites      SiteExtractor
	Pagination PaginationExtractor
	Validator  Validator
	Downloader Downloader
	Prompter   Prompter
	Sink       Sink
	Writer     OutputWriter
}

// Orchestrator sequences one search run.
type Orchestrator struct {
	cfg *config.Config
	c   Components
}

// NewOrchestrator checks that every required component is present.
func NewOrchestrator(cfg *config.Config, c Components) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is nil")
	}
	switch {
	case c.Fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case c.Results == nil, c.Sites == nil, c.Pagination == nil:
		return nil, errors.New("pipeline: extractors are required")
	case c.Validator == nil:
		return nil, errors.New("pipeline: validator is required")
	case c.Downloader == nil:
		return nil, errors.New("pipeline: downloader is required")
	case c.Prompter == nil:
		return nil, errors.New("pipeline: prompter is required")
	}
	if c.Sink == nil {
		c.Sink = discardSink
	}
	return &Orchestrator{cfg: cfg, c: c}, nil
}

// Run executes the workflow once. Terminal conditions such as an empty
// search are reported through the sink and recorded in RunResult.Outcome;
// the returned error is reserved for cancellation, prompt failures and
// report write failures.
func (o *Orchestrator) Run(ctx context.Context) (*models.RunResult, error) {
	result := &models.RunResult{StartTime: time.Now()}
	defer func() {
		result.EndTime = time.Now()
		slog.Info("run finished",
			slog.String("theme", result.Theme),
			slog.String("outcome", string(result.Outcome)),
			slog.Int("candidates", len(result.Candidates)),
			slog.Int("valid", len(result.ValidLinks)),
			slog.Int("downloaded", result.DownloadCount),
			slog.Duration("duration", result.EndTime.Sub(result.StartTime)),
		)
	}()

	o.emit(LevelHeader, "Welcome to the Theme Link Checker!")
	o.emit(LevelInfo, "Please enter the name of the theme you want to search for.")

	theme, err := o.c.Prompter.ThemeName(ctx)
	if err != nil {
		return result, fmt.Errorf("read theme name: %w", err)
	}
	theme = strings.TrimSpace(theme)
	if theme == "" {
		o.finish(result, models.OutcomeEmptyTheme, "No theme name entered.")
		return result, nil
	}
	result.Theme = theme
	result.SearchURL = parser.SearchURL(o.cfg.SearchURL, theme)

	o.emit(LevelProgress, "Please wait, it may take some time. Thank you for your patience.")

	content, ok, err := o.fetchPage(ctx, result.SearchURL)
	if err != nil {
		return result, err
	}
	if !ok {
		o.finish(result, models.OutcomeSearchFailed, "Failed to fetch HTML content.")
		return result, nil
	}

	result.ResultLinks = parser.ResolveURLs(result.SearchURL, o.c.Results.ExtractLinks(content))
	if len(result.ResultLinks) == 0 {
		o.finish(result, models.OutcomeNoResults, "No links found in the search results.")
		return result, nil
	}

	first := result.ResultLinks[0]
	o.emit(LevelProgress, fmt.Sprintf("Fetching data from: %s...", first))
	page, ok, err := o.fetchPage(ctx, first)
	if err != nil {
		return result, err
	}
	if !ok {
		o.finish(result, models.OutcomeResultPageFailed, "Failed to download content from the first link.")
		return result, nil
	}

	result.Candidates = o.c.Sites.ExtractThemeWebsites(page, theme)
	o.emit(LevelProgress, fmt.Sprintf("Processed the first theme link. Found %d websites.", len(result.Candidates)))

	result.PaginationLinks = parser.ResolveURLs(first, o.c.Pagination.ExtractPaginationLinks(page))
	if err := o.followPagination(ctx, result); err != nil {
		return result, err
	}

	o.emit(LevelHeader, "_____________________________________")
	o.emit(LevelProgress, "Checking links for ...")
	result.ValidLinks = o.c.Validator.CheckLinks(ctx, result.Candidates, func(v *models.ValidLink) {
		o.emit(LevelSuccess, "Valid link: "+v.URL)
	})
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(result.ValidLinks) == 0 {
		o.finish(result, models.OutcomeNoValidLinks, "No valid links found for downloading.")
		return result, nil
	}

	confirmed := o.cfg.AssumeYes
	if !confirmed {
		confirmed, err = o.c.Prompter.Confirm(ctx, "Do you want to download the valid files? (yes/no)")
		if err != nil {
			return result, fmt.Errorf("read download confirmation: %w", err)
		}
	}

	if confirmed {
		if err := o.downloadAll(ctx, result); err != nil {
			return result, err
		}
		result.Outcome = models.OutcomeCompleted
	} else {
		result.Outcome = models.OutcomeDownloadDeclined
	}

	if err := o.writeReport(result); err != nil {
		return result, err
	}
	return result, nil
}

// followPagination fetches each not yet visited pagination link and appends
// its hosting sites to the candidates. Absent pages are skipped.
func (o *Orchestrator) followPagination(ctx context.Context, result *models.RunResult) error {
	visited := make(map[string]struct{}, len(result.PaginationLinks))

	for _, link := range result.PaginationLinks {
		if _, seen := visited[link]; seen {
			continue
		}
		visited[link] = struct{}{}
		result.Visited = append(result.Visited, link)

		o.emit(LevelProgress, fmt.Sprintf("Fetching data from pagination: %s...", link))
		content, ok, err := o.fetchPage(ctx, link)
		if err != nil {
			return err
		}
		if !ok {
			slog.Debug("pagination page skipped", slog.String("url", link))
			continue
		}

		sites := o.c.Sites.ExtractThemeWebsites(content, result.Theme)
		result.Candidates = append(result.Candidates, sites...)
		o.emit(LevelProgress, fmt.Sprintf("Found %d additional websites on this page.", len(sites)))
	}
	return nil
}

func (o *Orchestrator) downloadAll(ctx context.Context, result *models.RunResult) error {
	for _, v := range result.ValidLinks {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := o.c.Downloader.DownloadFile(ctx, v.URL)
		if err != nil {
			v.DownloadError = err.Error()
			result.FailedDownloads++
			o.emit(LevelFailure, "Failed to download: "+v.URL)
			slog.Debug("download failed", slog.String("url", v.URL), slog.Any("error", err))
			continue
		}

		v.Downloaded = true
		v.File = path
		result.DownloadCount++
		o.emit(LevelSuccess, "Successfully downloaded: "+filepath.Base(path))
	}
	return nil
}

func (o *Orchestrator) writeReport(result *models.RunResult) error {
	if o.c.Writer == nil {
		return nil
	}
	if err := o.c.Writer.Write(result.ValidLinks); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// fetchPage pauses for the configured delay, then fetches url. The error is
// non-nil only when ctx is done.
func (o *Orchestrator) fetchPage(ctx context.Context, url string) (string, bool, error) {
	if err := o.pause(ctx); err != nil {
		return "", false, err
	}
	content, ok := o.c.Fetcher.Fetch(ctx, url)
	if !ok {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
	}
	return content, ok, nil
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.PageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(o.cfg.PageDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) finish(result *models.RunResult, outcome models.Outcome, message string) {
	result.Outcome = outcome
	o.emit(LevelFailure, message)
}

func (o *Orchestrator) emit(level Level, message string) {
	o.c.Sink.Emit(Event{Level: level, Message: message})
}
