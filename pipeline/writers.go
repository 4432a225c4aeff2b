package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
)

// OutputWriter receives the valid links of a run once the workflow is done.
// Writers are used from a single goroutine.
type OutputWriter interface {
	Write(links []*models.ValidLink) error
	Close() error
	Validate() error
}

var csvHeader = []string{"url", "site", "theme", "status", "checked_at", "downloaded", "file", "download_error"}

// CSVWriter writes one row per valid link under a fixed header.
type CSVWriter struct {
	file *os.File
	rows *csv.Writer
}

// NewCSVWriter creates filename, including missing parent directories, and
// writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	f, err := createReport(filename)
	if err != nil {
		return nil, err
	}

	cw := &CSVWriter{file: f, rows: csv.NewWriter(f)}
	if err := cw.rows.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.flush(); err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

func (cw *CSVWriter) Write(links []*models.ValidLink) error {
	for _, link := range links {
		if err := cw.rows.Write(csvRow(link)); err != nil {
			return fmt.Errorf("write csv row for %s: %w", link.URL, err)
		}
	}
	return cw.flush()
}

func (cw *CSVWriter) Close() error {
	if err := cw.flush(); err != nil {
		cw.file.Close()
		return err
	}
	return cw.file.Close()
}

func (cw *CSVWriter) Validate() error {
	return validateReport(cw.file, "csv")
}

func (cw *CSVWriter) flush() error {
	cw.rows.Flush()
	if err := cw.rows.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRow(link *models.ValidLink) []string {
	return []string{
		link.URL,
		link.Site,
		link.Theme,
		strconv.Itoa(link.StatusCode),
		link.CheckedAt.Format(time.RFC3339),
		strconv.FormatBool(link.Downloaded),
		link.File,
		link.DownloadError,
	}
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONWriter creates filename, including missing parent directories.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	f, err := createReport(filename)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &JSONWriter{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (jw *JSONWriter) Write(links []*models.ValidLink) error {
	for _, link := range links {
		if err := jw.enc.Encode(link); err != nil {
			return fmt.Errorf("encode %s: %w", link.URL, err)
		}
	}
	if err := jw.buf.Flush(); err != nil {
		return fmt.Errorf("flush json: %w", err)
	}
	return nil
}

func (jw *JSONWriter) Close() error {
	if err := jw.buf.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json: %w", err)
	}
	return jw.file.Close()
}

func (jw *JSONWriter) Validate() error {
	return validateReport(jw.file, "json")
}

func createReport(filename string) (*os.File, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create report %q: %w", filename, err)
	}
	return f, nil
}

// validateReport fails when the report file holds no bytes.
func validateReport(f *os.File, format string) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s report: %w", format, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s report %q is empty", format, f.Name())
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
