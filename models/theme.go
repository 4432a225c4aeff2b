// Package models defines data structures for a theme search run.
package models

import "time"

// DownloadLink is a candidate archive URL built from a hosting site and a
// theme name. Result and pagination links stay plain strings.
type DownloadLink struct {
	URL   string `csv:"url" json:"url"`
	Site  string `csv:"site" json:"site"`
	Theme string `csv:"theme" json:"theme"`
}

// ValidLink is a download link that survived the reachability probe.
type ValidLink struct {
	DownloadLink
	StatusCode    int       `csv:"status" json:"status"`
	CheckedAt     time.Time `csv:"checked_at" json:"checked_at"`
	Downloaded    bool      `csv:"downloaded" json:"downloaded"`
	File          string    `csv:"file" json:"file,omitempty"`
	DownloadError string    `csv:"download_error" json:"download_error,omitempty"`
}

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeEmptyTheme       Outcome = "empty_theme"
	OutcomeSearchFailed     Outcome = "search_failed"
	OutcomeNoResults        Outcome = "no_results"
	OutcomeResultPageFailed Outcome = "result_page_failed"
	OutcomeNoValidLinks     Outcome = "no_valid_links"
	OutcomeDownloadDeclined Outcome = "download_declined"
)

// RunResult holds the overall result of one search run.
type RunResult struct {
	Theme           string
	SearchURL       string
	ResultLinks     []string
	Candidates      []DownloadLink
	PaginationLinks []string
	Visited         []string
	ValidLinks      []*ValidLink
	Outcome         Outcome
	DownloadCount   int
	FailedDownloads int
	StartTime       time.Time
	EndTime         time.Time
}
