package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/config"
)

const (
	kindKey     = "kind"
	startKey    = "start"
	responseKey = "response"
)

var errNoResponse = errors.New("no response received")

// Client performs every network call of a run. Page fetches and link probes
// go through a synchronous colly collector; downloads use an http.Client on
// the same transport so bodies can be streamed to disk.
type Client struct {
	cfg        *config.Config
	collector  *colly.Collector
	httpClient *http.Client
	pages      *lru.Cache[string, string]
	Metrics    *Metrics
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	collector.WithTransport(transport)

	var pages *lru.Cache[string, string]
	if cfg.PageCacheSize > 0 {
		cache, err := lru.New[string, string](cfg.PageCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		pages = cache
	}

	c := &Client{
		cfg:       cfg,
		collector: collector,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.DownloadTimeout,
		},
		pages:   pages,
		Metrics: NewMetrics(),
	}
	c.configureHandlers()
	return c, nil
}

// WithTransport replaces the round tripper used by every request.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.collector.WithTransport(rt)
	c.httpClient.Transport = rt
}

// Fetch retrieves rawURL and returns its body when the final status is 200.
// Every other status and every transport failure is reported as absence.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	if c.pages != nil {
		if body, ok := c.pages.Get(rawURL); ok {
			c.Metrics.IncCacheHit()
			slog.Debug("page served from cache", slog.String("url", rawURL))
			return body, true
		}
	}

	resp, err := c.do(http.MethodGet, rawURL, kindPage)
	status := statusOf(resp)
	if err == nil && status == http.StatusOK {
		body := string(resp.Body)
		if c.pages != nil {
			c.pages.Add(rawURL, body)
		}
		c.Metrics.IncRequest(kindPage, "ok")
		return body, true
	}

	c.recordFailure(kindPage, rawURL, err, status)
	return "", false
}

func (c *Client) configureHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(startKey, time.Now())
	})

	c.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseKey, r)
		c.observe(r)
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		if r == nil {
			return
		}
		r.Ctx.Put(responseKey, r)
		c.observe(r)
	})
}

func (c *Client) observe(r *colly.Response) {
	if start, ok := r.Ctx.GetAny(startKey).(time.Time); ok {
		c.Metrics.ObserveDuration(r.Ctx.Get(kindKey), time.Since(start))
	}
}

// do issues one synchronous request. The response is nil when the request
// never reached the transport; its StatusCode is 0 on transport failure.
func (c *Client) do(method, rawURL, kind string) (*colly.Response, error) {
	ctx := colly.NewContext()
	ctx.Put(kindKey, kind)
	err := c.collector.Request(method, rawURL, nil, ctx, nil)
	resp, _ := ctx.GetAny(responseKey).(*colly.Response)
	return resp, err
}

func (c *Client) recordFailure(kind, rawURL string, err error, status int) error {
	classified := classifyError(err, status)
	if classified == nil {
		classified = errNoResponse
	}
	category := errorTypeLabel(classified)

	c.Metrics.IncRequest(kind, category)
	c.Metrics.IncError(category)

	level := slog.LevelWarn
	if kind == kindProbe {
		level = slog.LevelDebug
	}
	slog.Log(context.Background(), level, "request failed",
		slog.String("kind", kind),
		slog.String("url", rawURL),
		slog.Int("status", status),
		slog.String("category", category),
		slog.Any("error", classified),
	)
	return classified
}

func statusOf(resp *colly.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
