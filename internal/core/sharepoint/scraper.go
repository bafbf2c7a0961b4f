// Package sharepoint pulls document links from a SharePoint page over plain
// HTTP (an exported session cookie stands in for interactive SSO) and feeds
// the downloads into the ingestion queue.
package sharepoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var documentExtensions = []string{".pdf", ".docx", ".xlsx", ".pptx"}

// DocumentLink is one scraped document reference.
type DocumentLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Scraper fetches a SharePoint page and extracts document links from it.
type Scraper struct {
	httpClient *http.Client
	siteURL    string
	cookie     string
}

func NewScraper(siteURL, cookie string) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		siteURL:    siteURL,
		cookie:     cookie,
	}
}

// ScrapeDocuments loads the configured page and returns every anchor that
// points at a document file. SharePoint list markup is messy; matching on
// href extensions is the portable heuristic.
func (s *Scraper) ScrapeDocuments(ctx context.Context) ([]DocumentLink, error) {
	body, err := s.fetch(ctx, s.siteURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(s.siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site url: %w", err)
	}

	var links []DocumentLink
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ext := strings.ToLower(path.Ext(strings.SplitN(href, "?", 2)[0]))
		if !isDocumentExt(ext) {
			return
		}

		abs := href
		if ref, err := url.Parse(href); err == nil {
			abs = base.ResolveReference(ref).String()
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = path.Base(abs)
		}
		links = append(links, DocumentLink{
			Title: title,
			URL:   abs,
			Type:  strings.TrimPrefix(ext, "."),
		})
	})

	return links, nil
}

// Download fetches one scraped document into destDir and returns the local
// path.
func (s *Scraper) Download(ctx context.Context, link DocumentLink, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	body, err := s.fetch(ctx, link.URL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	name := filepath.Base(strings.SplitN(link.URL, "?", 2)[0])
	dest := filepath.Join(destDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

func (s *Scraper) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

func isDocumentExt(ext string) bool {
	for _, e := range documentExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
