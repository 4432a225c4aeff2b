package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
)

// CheckLinks probes each link with a HEAD request, in order, and keeps those
// whose final status is anything but 404. Links whose probe fails at the
// transport level are dropped without error. onValid, when set, is called
// once per retained link.
func (c *Client) CheckLinks(ctx context.Context, links []models.DownloadLink, onValid func(*models.ValidLink)) []*models.ValidLink {
	valid := make([]*models.ValidLink, 0, len(links))

	for _, link := range links {
		if ctx.Err() != nil {
			slog.Debug("link check interrupted", slog.Int("checked", len(valid)), slog.Any("error", ctx.Err()))
			break
		}

		resp, err := c.do(http.MethodHead, link.URL, kindProbe)
		status := statusOf(resp)
		switch {
		case status == 0:
			c.recordFailure(kindProbe, link.URL, err, status)
			continue
		case status == http.StatusNotFound:
			c.Metrics.IncRequest(kindProbe, "not_found")
			continue
		}

		c.Metrics.IncRequest(kindProbe, "valid")
		v := &models.ValidLink{
			DownloadLink: link,
			StatusCode:   status,
			CheckedAt:    time.Now(),
		}
		valid = append(valid, v)
		if onValid != nil {
			onValid(v)
		}
	}

	c.Metrics.AddLinks("checked", len(links))
	c.Metrics.AddLinks("valid", len(valid))
	return valid
}
