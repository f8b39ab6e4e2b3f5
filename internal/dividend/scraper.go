package dividend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

const DefaultScreenURL = "https://www.screener.in/screens/3/highest-dividend-yield-shares/"

// ScraperConfig configures the screener table scraper.
type ScraperConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		URL:       DefaultScreenURL,
		Timeout:   10 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Scraper reads the highest dividend-yield screen from screener.in.
type Scraper struct {
	cfg ScraperConfig
}

func NewScraper(cfg ScraperConfig) *Scraper {
	def := DefaultScraperConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Scraper{cfg: cfg}
}

// FetchCandidates returns up to limit raw rows in page order (limit <= 0 means all).
// On failure it returns an empty slice along with the error.
func (s *Scraper) FetchCandidates(ctx context.Context, limit int) ([]types.RawDividendRow, error) {
	if err := ctx.Err(); err != nil {
		return []types.RawDividendRow{}, err
	}
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return []types.RawDividendRow{}, fmt.Errorf("invalid screen url %q: %w", s.cfg.URL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.cfg.Timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.cfg.UserAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})

	var rows []types.RawDividendRow
	var parseErr error
	c.OnResponse(func(r *colly.Response) {
		rows, parseErr = ParseTable(bytes.NewReader(r.Body))
	})

	if err := c.Visit(s.cfg.URL); err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch dividend screen", err, "url", s.cfg.URL)
		return []types.RawDividendRow{}, fmt.Errorf("%w: dividend screen: %v", types.ErrDataUnavailable, err)
	}
	c.Wait()

	if parseErr != nil {
		logger.Warn(ctx, "Dividend screen could not be parsed", "url", s.cfg.URL, "error", parseErr)
		return []types.RawDividendRow{}, parseErr
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	logger.Info(ctx, "Dividend candidates fetched", "rows", len(rows))
	return rows, nil
}

// ParseTable extracts name, link and yield from the first data table.
// Rows with fewer than seven cells are skipped.
func ParseTable(r io.Reader) ([]types.RawDividendRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse dividend screen: %w", err)
	}
	table := doc.Find("table.data-table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no data table on dividend screen", types.ErrDataUnavailable)
	}

	rows := []types.RawDividendRow{}
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 7 {
			return
		}
		nameCell := cells.Eq(1)
		link := nameCell.Find("a").First()
		name := strings.TrimSpace(link.Text())
		if name == "" {
			name = strings.TrimSpace(nameCell.Text())
		}
		href, _ := link.Attr("href")
		rows = append(rows, types.RawDividendRow{
			Name:  name,
			Href:  strings.TrimSpace(href),
			Yield: strings.TrimSpace(cells.Eq(6).Text()),
		})
	})
	return rows, nil
}
