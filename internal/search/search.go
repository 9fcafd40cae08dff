// Package search answers "what is X" questions with a web search against
// DuckDuckGo's HTML endpoint.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultEndpoint is DuckDuckGo's script-free results page.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

// Result is one search hit.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// Client queries DuckDuckGo.
type Client struct {
	HTTP       *http.Client
	Endpoint   string
	Region     string
	MaxResults int
	UserAgent  string
}

// NewClient returns a client with a 10 second timeout.
func NewClient(region string, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Client{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Endpoint:   DefaultEndpoint,
		Region:     region,
		MaxResults: maxResults,
		UserAgent:  "Mozilla/5.0 (compatible; lucybot/1.0)",
	}
}

// Search returns up to MaxResults hits for query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty search query")
	}
	form := url.Values{"q": {query}}
	if c.Region != "" {
		form.Set("kl", c.Region)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return parseResults(doc, c.MaxResults), nil
}

// parseResults walks the result page. Each hit is a div.result holding an
// a.result__a link and a .result__snippet element.
func parseResults(root *html.Node, limit int) []Result {
	var out []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if r, ok := extractResult(n); ok {
				out = append(out, r)
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(root)
	return out
}

func extractResult(n *html.Node) (Result, bool) {
	var r Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a") && r.URL == "":
				r.Title = textOf(n)
				r.URL = resolveLink(attr(n, "href"))
			case hasClass(n, "result__snippet") && r.Snippet == "":
				r.Snippet = textOf(n)
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return r, r.Title != "" && r.URL != ""
}

// resolveLink unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=...).
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		u.Scheme = "https"
	}
	return u.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatResults renders hits as the context block handed to the LLM.
func FormatResults(results []Result) string {
	var b strings.Builder
	b.WriteString("【Web検索結果】\n")
	for _, r := range results {
		fmt.Fprintf(&b, "タイトル: %s\n内容: %s\nURL: %s\n---\n", r.Title, r.Snippet, r.URL)
	}
	return b.String()
}
