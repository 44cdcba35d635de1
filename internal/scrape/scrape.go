// Package scrape fetches a company's public website and condenses it into a
// short context string used to personalise reports. Scraping is strictly best
// effort: every failure path yields an empty string, never an error.
package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "Leomayn-Report-Bot/1.0"

	maxBodyBytes  = 2 << 20
	maxParagraphs = 6
	minParagraph  = 20
	maxLeadText   = 600
)

// Scraper fetches and summarises company websites.
type Scraper struct {
	client  *http.Client
	timeout time.Duration
}

// New returns a scraper with the default per-request timeout.
func New() *Scraper {
	return &Scraper{
		client:  &http.Client{},
		timeout: defaultTimeout,
	}
}

// NewWithClient returns a scraper using the given HTTP client and timeout,
// used by tests and callers that need custom transport settings.
func NewWithClient(client *http.Client, timeout time.Duration) *Scraper {
	return &Scraper{client: client, timeout: timeout}
}

// Page holds the fragments extracted from a single HTML document.
type Page struct {
	Title       string
	Description string
	LeadText    string
}

// CompanyContext fetches the homepage and, when reachable, the /about page,
// and assembles the labelled fragments into one string. Returns "" when
// nothing useful could be extracted.
func (s *Scraper) CompanyContext(ctx context.Context, websiteURL string) string {
	base, ok := normaliseURL(websiteURL)
	if !ok {
		return ""
	}

	html := s.fetchPage(ctx, base.String())
	if html == "" {
		return ""
	}
	page := Extract(html)

	var aboutText string
	if aboutURL, err := base.Parse("/about"); err == nil {
		if aboutHTML := s.fetchPage(ctx, aboutURL.String()); aboutHTML != "" {
			aboutText = Extract(aboutHTML).LeadText
		}
	}

	var parts []string
	if page.Title != "" {
		parts = append(parts, "Company: "+page.Title)
	}
	if page.Description != "" {
		parts = append(parts, "Description: "+page.Description)
	}
	if page.LeadText != "" {
		parts = append(parts, "Homepage: "+page.LeadText)
	}
	if aboutText != "" {
		parts = append(parts, "About: "+aboutText)
	}
	return strings.Join(parts, ". ")
}

// normaliseURL trims the input and defaults the scheme to https.
func normaliseURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http://") && !strings.HasPrefix(strings.ToLower(raw), "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

// fetchPage retrieves a single page, bounded by the scraper timeout. Any
// failure returns "".
func (s *Scraper) fetchPage(ctx context.Context, pageURL string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}

// Extract parses an HTML document into its title, meta description, and lead
// paragraph text. Chrome (script, style, nav, header, footer) is discarded
// before paragraphs are collected.
func Extract(html string) Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}
	}

	var page Page
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}

	doc.Find("script, style, nav, header, footer").Remove()

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) > minParagraph {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxParagraphs
	})

	lead := strings.Join(paragraphs, " ")
	if len(lead) > maxLeadText {
		// Truncating can split a multibyte rune; drop the partial tail.
		lead = strings.ToValidUTF8(lead[:maxLeadText], "")
	}
	page.LeadText = lead
	return page
}
