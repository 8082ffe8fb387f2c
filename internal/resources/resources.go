package resources

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Tutorial is the extracted content of a cooking-tutorial or recipe
// page, stripped to what a card can display.
type Tutorial struct {
	Title    string
	Headings []string
	Text     string
}

// Fetcher retrieves and extracts tutorial pages.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads the page and extracts its title, section headings
// and visible text, with scripts, styles and navigation removed.
func (f *Fetcher) Fetch(url string) (*Tutorial, error) {
	resp, err := f.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	// Remove noise before extracting text.
	doc.Find("script, style, nav, footer, iframe").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var headings []string
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			headings = append(headings, text)
		}
	})

	return &Tutorial{
		Title:    title,
		Headings: headings,
		Text:     strings.TrimSpace(doc.Find("body").Text()),
	}, nil
}
