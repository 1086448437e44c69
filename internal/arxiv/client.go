// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed/atom"

	"github.com/pdiddy/arxiv-digest/internal/httputil"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

const defaultMaxResults = 2000

// Client lists recent submissions per category from the arXiv Atom API.
type Client struct {
	HTTP *http.Client
}

// ListCategory returns the newest entries of one category, newest first.
func (c *Client) ListCategory(ctx context.Context, category string, cfg types.FetchConfig) ([]types.Paper, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	params := url.Values{
		"search_query": {"cat:" + category},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	feed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if p, ok := paperFromEntry(entry); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// paperFromEntry maps an Atom entry to a Paper. Entries without an id are
// dropped; the API emits one such entry when a query has no results.
func paperFromEntry(e *atom.Entry) (types.Paper, bool) {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:      strings.TrimSpace(e.ID),
		Title:   collapseSpace(e.Title),
		Summary: strings.TrimSpace(e.Summary),
	}
	if p.Title == "" {
		p.Title = "N/A"
	}

	for _, a := range e.Authors {
		if a == nil {
			continue
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	if e.PublishedParsed != nil {
		p.Published = e.PublishedParsed.UTC()
	}
	if e.UpdatedParsed != nil {
		p.Updated = e.UpdatedParsed.UTC()
	}

	for _, l := range e.Links {
		if l != nil && l.Title == "pdf" {
			p.PDFLink = l.Href
			break
		}
	}

	for _, c := range e.Categories {
		if c != nil && c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	return p, true
}

// collapseSpace trims s and folds the line breaks arXiv puts inside titles.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
