package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"pagelens/internal/contextutil"
)

const (
	// fetchTimeout bounds a single webpage fetch so one slow site cannot
	// exhaust a request's time budget.
	fetchTimeout = 10 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodyBytes = 10 << 20 // 10 MiB
)

// BlockedError indicates the target site refuses automated access.
// Callers must branch on it (errors.As) and must not index the failure text.
type BlockedError struct {
	URL        string
	StatusCode int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("site blocks automated access: %s (status %d)", e.URL, e.StatusCode)
}

// Extractor fetches webpages and extracts cleaned plain text.
type Extractor struct {
	client *http.Client
}

// New creates a new Extractor with a bounded fetch timeout.
func New() *Extractor {
	return &Extractor{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch issues an HTTP GET to the URL and returns the cleaned visible text.
// Returns *BlockedError when the site refuses automated access (403/429);
// other network failures and non-2xx statuses are plain fetch errors.
func (e *Extractor) Fetch(ctx context.Context, url string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		logger.WarnContext(ctx, "site refused automated access", "url", url, "status", resp.StatusCode)
		return "", &BlockedError{URL: url, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("bad status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := findTitle(doc)
	content := findContentRoot(doc)
	text := cleanText(extractText(content))

	if title != "" {
		text = fmt.Sprintf("Title: %s\n\n%s", title, text)
	}

	logger.DebugContext(ctx, "extracted webpage content", "url", url, "title", title, "length", len(text))
	return text, nil
}

// skipTags are removed wholesale before text extraction: non-content chrome
// and invisible elements.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"nav":      true,
}

// findTitle returns the text of the first <title> element, if any.
func findTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// findContentRoot locates the most specific content container: <main> or
// <article> first, then an element with a "content" class or id, then <body>,
// falling back to the whole document.
func findContentRoot(doc *html.Node) *html.Node {
	if n := findElement(doc, func(n *html.Node) bool {
		return n.Data == "main" || n.Data == "article"
	}); n != nil {
		return n
	}
	if n := findElement(doc, func(n *html.Node) bool {
		return hasAttrValue(n, "class", "content") || hasAttrValue(n, "id", "content")
	}); n != nil {
		return n
	}
	if n := findElement(doc, func(n *html.Node) bool {
		return n.Data == "body"
	}); n != nil {
		return n
	}
	return doc
}

// findElement returns the first element node matching the predicate, depth-first.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// hasAttrValue reports whether the element carries the given attribute value,
// for class attributes matching any space-separated token.
func hasAttrValue(n *html.Node, key, value string) bool {
	for _, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		if key == "class" {
			for _, token := range strings.Fields(attr.Val) {
				if token == value {
					return true
				}
			}
			continue
		}
		if attr.Val == value {
			return true
		}
	}
	return false
}

// extractText collects visible text nodes under root, skipping chrome elements,
// with newlines as separators.
func extractText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}

// cleanText collapses blank lines and double-space artifacts: each line is
// trimmed and split on runs of double spaces, and empty fragments are dropped.
func cleanText(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, phrase := range strings.Split(line, "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				parts = append(parts, phrase)
			}
		}
	}
	return strings.Join(parts, "\n")
}
