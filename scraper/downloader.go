package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/parser"
)

// DownloadFile streams rawURL into the output directory under the name
// derived by parser.LocalFilename and returns the written path. The body is
// copied in fixed-size chunks into a temporary file that is renamed on
// success and removed on any failure, so a failed download never leaves a
// file behind.
func (c *Client) DownloadFile(ctx context.Context, rawURL string) (string, error) {
	name, err := parser.LocalFilename(rawURL)
	if err != nil {
		c.Metrics.IncDownload("invalid_url", 0)
		return "", err
	}
	dest := filepath.Join(c.cfg.OutputDir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.Metrics.IncDownload("invalid_url", 0)
		return "", fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("download %s: %w", rawURL, c.recordFailure(kindDownload, rawURL, err, 0))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.Metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("download %s: %w", rawURL, c.recordFailure(kindDownload, rawURL, nil, resp.StatusCode))
	}

	written, err := c.writeFile(dest, resp.Body)
	c.Metrics.ObserveDuration(kindDownload, time.Since(start))
	if err != nil {
		c.Metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("download %s: %w", rawURL, c.recordFailure(kindDownload, rawURL, err, resp.StatusCode))
	}

	c.Metrics.IncRequest(kindDownload, "ok")
	c.Metrics.IncDownload("ok", written)
	slog.Debug("download complete",
		slog.String("url", rawURL),
		slog.String("file", dest),
		slog.Int64("bytes", written),
	)
	return dest, nil
}

func (c *Client) writeFile(dest string, body io.Reader) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create partial file: %w", err)
	}

	written, err := copyChunks(tmp, body, c.cfg.ChunkSize)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close partial file: %w", closeErr)
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dest)
	}
	if err != nil {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("remove partial download", slog.String("file", tmp.Name()), slog.Any("error", rmErr))
		}
		return written, err
	}
	return written, nil
}

// copyChunks copies src to dst through a buffer of size bytes.
func copyChunks(dst io.Writer, src io.Reader, size int) (int64, error) {
	buf := make([]byte, size)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, fmt.Errorf("write chunk: %w", err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}
}
