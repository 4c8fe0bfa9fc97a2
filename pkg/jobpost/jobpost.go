// Package jobpost fetches a job posting page and reduces it to text.
package jobpost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/allencass/aistudio/pkg/apperr"
	clog "github.com/allencass/aistudio/pkg/log"
)

const (
	DefaultTimeout = 30 * time.Second
	maxPageBytes   = 5 << 20
)

// noise is removed before text extraction
const noise = "script, style, noscript, nav, footer, header, form, .cookie-banner, .popup, .ad, .ads, .sidebar"

// Selectors tried in order for the posting body; the first match wins.
var Selectors = []string{
	".job-description",
	"#job-description",
	".job-details",
	".posting-content",
	".description__text",
	"[data-testid='job-description']",
	"[itemprop='description']",
	"main",
	"article",
	"#content",
	".content",
}

// IsURL reports whether s is a single absolute http(s) URL and nothing else
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: DefaultTimeout},
		UserAgent: userAgent,
	}
}

// Fetch downloads rawURL and returns its main text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	const op = "jobpost.fetch"
	rawURL = strings.TrimSpace(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", apperr.MissingInput(op, fmt.Sprintf("invalid job posting URL %q", rawURL))
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	clog.Debug("fetching job posting", "url", rawURL)
	resp, err := client.Do(req)
	if err != nil {
		return "", apperr.External(op, "could not fetch job posting", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.External(op, fmt.Sprintf("could not fetch job posting: HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", apperr.External(op, "could not read job posting", err)
	}

	text, err := ExtractText(string(body))
	if err != nil {
		return "", apperr.External(op, "could not parse job posting", err)
	}
	if text == "" {
		return "", apperr.MissingInput(op, "the job posting page has no text; paste the description instead")
	}

	clog.Debug("extracted job posting", "url", rawURL, "chars", len(text))
	return text, nil
}

// ExtractText strips page chrome and returns the posting body with one
// trimmed line per text line.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noise).Remove()

	var main *goquery.Selection
	for _, sel := range Selectors {
		if s := doc.Find(sel); s.Length() > 0 {
			main = s.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	// block elements run together in Text(); give each its own line
	main.Find("p, li, br, div, h1, h2, h3, h4, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(main.Text()), nil
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
