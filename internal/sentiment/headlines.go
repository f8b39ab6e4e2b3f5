package sentiment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/types"
)

// HeadlineSource returns recent news headlines for a symbol.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string, max int) ([]string, error)
}

// StaticHeadlines returns two canned headlines per symbol. It keeps the
// chat and report usable without network access.
type StaticHeadlines struct{}

func (StaticHeadlines) Headlines(ctx context.Context, symbol string, max int) ([]string, error) {
	sym := displaySymbol(symbol)
	out := []string{
		fmt.Sprintf("%s shares hit new highs!", sym),
		fmt.Sprintf("%s drops after quarterly earnings", sym),
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// NewsSource describes a site whose tag or topic page lists headlines.
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // {symbol} is replaced by the lower-case symbol
	Selector   string // CSS selector matching headline anchors
}

func DefaultNewsSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{symbol}.html",
			Selector:   "li.clearfix h2 a, li.clearfix h3 a",
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{symbol}",
			Selector:   "div.story-box a",
		},
	}
}

// Scraper collects headlines from the configured news sites.
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
	limiter *rate.Limiter
}

func NewScraper(sources []NewsSource, timeout time.Duration) *Scraper {
	if len(sources) == 0 {
		sources = DefaultNewsSources()
	}
	// one site visit every two seconds across all symbols
	return &Scraper{sources: sources, timeout: timeout, limiter: rate.NewLimiter(rate.Every(2*time.Second), 1)}
}

// Headlines visits every source in turn and stops once max headlines are
// collected. A failing source is logged and skipped; when every visited
// source fails the result is ErrDataUnavailable.
func (s *Scraper) Headlines(ctx context.Context, symbol string, max int) ([]string, error) {
	sym := strings.ToLower(displaySymbol(symbol))
	seen := make(map[string]bool)
	var out []string
	visited, failed := 0, 0
	var lastErr error

	for _, src := range s.sources {
		if max > 0 && len(out) >= max {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return out, err
		}

		visited++
		titles, err := s.scrapeSource(ctx, src, sym)
		if err != nil {
			failed++
			lastErr = err
			logger.ErrorWithErr(ctx, "Failed to scrape news source", err, "source", src.Name, "symbol", symbol)
			continue
		}
		for _, t := range titles {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
			if max > 0 && len(out) >= max {
				break
			}
		}
	}

	if visited > 0 && failed == visited {
		return nil, fmt.Errorf("%w: all %d news sources failed for %s: %v", types.ErrDataUnavailable, failed, symbol, lastErr)
	}

	logger.Info(ctx, "Headline scraping completed", "symbol", symbol, "headlines", len(out))
	return out, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, src NewsSource, sym string) ([]string, error) {
	u, err := url.Parse(src.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("bad base url %q: %w", src.BaseURL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	var titles []string
	c.OnHTML(src.Selector, func(e *colly.HTMLElement) {
		if t := strings.Join(strings.Fields(e.Text), " "); t != "" {
			titles = append(titles, t)
		}
	})

	target := strings.TrimRight(src.BaseURL, "/") + strings.ReplaceAll(src.SearchPath, "{symbol}", url.PathEscape(sym))
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("visit %s: %w", target, err)
	}
	c.Wait()
	return titles, nil
}

// displaySymbol strips an exchange suffix such as ".NS".
func displaySymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	return s
}
