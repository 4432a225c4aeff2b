// Package parser extracts links from theme directory pages and builds the
// URLs and file names derived from them.
package parser

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Salarlotfi1381/download-free-paid-wordpress-templates/models"
)

// Selectors are the CSS selectors for the markup of the directory site.
type Selectors struct {
	SearchResults   string
	ResultItem      string
	ThemeWebsites   string
	WebsiteEntry    string
	WebsiteName     string
	Pagination      string
	PaginatorAnchor string
}

// DefaultSelectors returns the selectors for themesinfo.com.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchResults:   "div.div_search",
		ResultItem:      "div.thumbnail_home",
		ThemeWebsites:   "div.row.theme_website",
		WebsiteEntry:    "div.theme_web_div",
		WebsiteName:     "p.theme_web_h2",
		Pagination:      "div.pagination-centered",
		PaginatorAnchor: "a.paginator_a",
	}
}

// Extractor parses search result and theme detail pages.
type Extractor struct {
	sel Selectors
}

// NewExtractor builds an extractor for sel.
func NewExtractor(sel Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// ExtractLinks returns the detail page links of a search result page in
// document order. Items without a usable anchor are skipped.
func (x *Extractor) ExtractLinks(content string) []string {
	container := x.container(content, x.sel.SearchResults)
	if container == nil {
		return []string{}
	}

	links := []string{}
	container.Find(x.sel.ResultItem).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, href)
	})
	return links
}

// ExtractThemeWebsites builds one download link per hosting site listed on
// a theme detail page. Host names are not validated here.
func (x *Extractor) ExtractThemeWebsites(content, theme string) []models.DownloadLink {
	container := x.container(content, x.sel.ThemeWebsites)
	if container == nil {
		return []models.DownloadLink{}
	}

	websites := []models.DownloadLink{}
	container.Find(x.sel.WebsiteEntry).Each(func(_ int, entry *goquery.Selection) {
		name := entry.Find(x.sel.WebsiteName).First()
		if name.Length() == 0 {
			return
		}
		site := strings.TrimSpace(name.Text())
		websites = append(websites, models.DownloadLink{
			URL:   DownloadURL(site, theme),
			Site:  site,
			Theme: theme,
		})
	})
	return websites
}

// ExtractPaginationLinks returns the distinct paginator targets of a theme
// detail page in discovery order.
func (x *Extractor) ExtractPaginationLinks(content string) []string {
	container := x.container(content, x.sel.Pagination)
	if container == nil {
		return []string{}
	}

	links := []string{}
	seen := make(map[string]struct{})
	container.Find(x.sel.PaginatorAnchor).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}

func (x *Extractor) container(content, selector string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	found := doc.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return found
}

// SearchURL builds the search request for theme against the directory base URL.
func SearchURL(base, theme string) string {
	return base + "?search_type=anywhere&search=" + url.QueryEscape(theme) + "&s=1"
}

// ResolveURL resolves href against the URL of the page it was found on.
// href is returned unchanged when either side does not parse.
func ResolveURL(pageURL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ResolveURLs resolves every href against pageURL, keeping order.
func ResolveURLs(pageURL string, hrefs []string) []string {
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		out = append(out, ResolveURL(pageURL, href))
	}
	return out
}

// DownloadURL builds the conventional WordPress theme archive location on site.
func DownloadURL(site, theme string) string {
	return fmt.Sprintf("https://%s/wp-content/themes/%s.zip", site, theme)
}

// LocalFilename derives the file name for a downloaded URL, embedding the
// host so identical archives from different sites do not collide:
// https://example.com/theme.zip becomes theme[example.com].zip.
func LocalFilename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("download url %q has no host", rawURL)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("download url %q has no file name", rawURL)
	}

	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s[%s]%s", name, u.Host, ext), nil
}
