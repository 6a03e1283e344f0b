package tools

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/retry"
)

const (
	maxResponseSize     = 1 << 20 // 1MB limit
	defaultFetchTimeout = 15 * time.Second
)

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Page is the readable text of a fetched document.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Fetch downloads source pages for ingestion and reduces HTML to plain text.
type Fetch struct {
	client  *http.Client
	retrier *retry.Retrier
}

func NewFetchWithTimeout(timeout time.Duration, retryCfg *retry.Config) *Fetch {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}
	return &Fetch{
		client: &http.Client{
			Timeout: timeout,
		},
		retrier: retry.NewRetrier(retryCfg),
	}
}

func NewFetch() *Fetch {
	return NewFetchWithTimeout(defaultFetchTimeout, nil)
}

func (f *Fetch) FetchPage(ctx context.Context, url string) (*Page, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("failed to fetch url: empty url")
	}

	var page *Page
	err := f.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", core.AppUserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}

		page, err = toPage(url, resp.Header.Get("Content-Type"), raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func toPage(url, contentType string, raw []byte) (*Page, error) {
	page := &Page{URL: url}

	if !isHTML(contentType, raw) {
		page.Text = string(raw)
		return page, nil
	}

	if m := titleRe.FindSubmatch(raw); m != nil {
		page.Title = strings.Join(strings.Fields(html.UnescapeString(string(m[1]))), " ")
	}

	text, err := html2text.FromString(string(raw), html2text.Options{
		OmitLinks:    true,
		PrettyTables: true,
	})
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to extract text: %w", err))
	}
	page.Text = text
	return page, nil
}

func isHTML(contentType string, raw []byte) bool {
	if contentType != "" {
		return strings.Contains(contentType, "html")
	}
	head := strings.ToLower(string(raw[:min(len(raw), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
