package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

const (
	// maxPageBytes caps how much of a webpage we read.
	maxPageBytes = 2 << 20

	// maxContentChars caps how much page content goes into the prompt.
	maxContentChars = 10000
)

// pageContent is a fetched webpage prepared for the model.
type pageContent struct {
	Markdown string
	OGImage  string
}

// fetchPage downloads a webpage and converts it to markdown for the prompt.
// Markdown strips the tag soup, so far more of the actual recipe fits in
// the content budget than with raw HTML.
func fetchPage(ctx context.Context, client *http.Client, pageURL string) (*pageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SimmerBot/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	rawHTML := string(body)

	markdown, err := htmltomarkdown.ConvertString(rawHTML)
	if err != nil {
		// If conversion fails, fall back to the raw HTML
		markdown = rawHTML
	}
	markdown = strings.TrimSpace(markdown)
	if len(markdown) > maxContentChars {
		markdown = markdown[:maxContentChars]
	}

	return &pageContent{
		Markdown: markdown,
		OGImage:  findOGImage(rawHTML),
	}, nil
}

// findOGImage returns the og:image meta tag content, or "".
// The og:image usually holds the hero photo on recipe sites.
func findOGImage(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	return findAttr(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return false
		}
		return getAttr(n, "property") == "og:image"
	}, "content")
}

// getAttr returns the value of the named attribute on a node.
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// findAttr walks the tree and returns the named attribute of the first
// node matching the predicate.
func findAttr(n *html.Node, match func(*html.Node) bool, attrName string) string {
	if match(n) {
		return getAttr(n, attrName)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v := findAttr(c, match, attrName); v != "" {
			return v
		}
	}
	return ""
}
