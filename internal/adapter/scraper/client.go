// Package scraper fetches a job posting URL and reduces it to analyzable
// plain text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"jobfit/internal/analysis"
)

const maxResponseBytes = 2 << 20

var (
	blockedElements = regexp.MustCompile(`(?is)<(script|style|noscript|nav|header|footer|aside|form)\b[^>]*>.*?</\s*(script|style|noscript|nav|header|footer|aside|form)\s*>`)
	htmlComments    = regexp.MustCompile(`(?s)<!--.*?-->`)
	anyTag          = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespace      = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

type Client struct {
	http      *http.Client
	minLength int
	maxLength int
}

func NewClient(timeout time.Duration, minLength, maxLength int) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		minLength: minLength,
		maxLength: maxLength,
	}
}

// Fetch retrieves url and returns cleaned plain text. Anything that
// leaves less than the minimum content length is reported as a likely
// scraper block; the caller treats that as terminal and asks the user to
// paste the text instead.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", analysis.ContentUnavailable("", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; jobfit/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", analysis.ContentUnavailable("", fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", analysis.ContentUnavailable("", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", analysis.ContentUnavailable("", fmt.Errorf("read %s: %w", url, err))
	}

	text := Clean(string(body))
	if len(text) > c.maxLength {
		text = truncateRunes(text, c.maxLength)
	}
	if len(text) < c.minLength {
		return "", analysis.ContentUnavailable("", fmt.Errorf("content from %s too short (%d chars), likely blocked", url, len(text)))
	}
	return text, nil
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Clean strips boilerplate markup and collapses whitespace.
func Clean(html string) string {
	text := blockedElements.ReplaceAllString(html, " ")
	text = htmlComments.ReplaceAllString(text, " ")
	text = anyTag.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
