// Package sentiment turns recent headlines into a news sentiment score.
package sentiment

import (
	"context"
	"strings"
	"sync"
	"time"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/store"
)

// Service scores symbols from a headline source, caching results per symbol.
type Service struct {
	source       HeadlineSource
	cache        *scoreCache
	maxHeadlines int
}

var _ interfaces.SentimentProvider = (*Service)(nil)

// ServiceConfig configures the sentiment service
type ServiceConfig struct {
	MaxHeadlines  int
	CacheDuration time.Duration
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:  10,
		CacheDuration: time.Hour,
	}
}

type scoreCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	score     float64
	timestamp time.Time
}

func newScoreCache(ttl time.Duration) *scoreCache {
	return &scoreCache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *scoreCache) get(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[symbol]
	if !ok || c.now().Sub(entry.timestamp) > c.ttl {
		return 0, false
	}
	return entry.score, true
}

func (c *scoreCache) set(symbol string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[symbol] = cacheEntry{score: score, timestamp: c.now()}
	// expired entries are swept on write; the cache only grows with the watchlist
	for sym, e := range c.data {
		if c.now().Sub(e.timestamp) > c.ttl {
			delete(c.data, sym)
		}
	}
}

func NewService(source HeadlineSource, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		source:       source,
		cache:        newScoreCache(cfg.CacheDuration),
		maxHeadlines: cfg.MaxHeadlines,
	}
}

// NewFromConfig selects the headline source named by cfg.Sentiment.Source.
// NONE returns nil; callers treat a nil provider as a constant 0.0 score.
func NewFromConfig(cfg *store.Config) interfaces.SentimentProvider {
	svcCfg := &ServiceConfig{
		MaxHeadlines:  cfg.Sentiment.MaxHeadlines,
		CacheDuration: time.Duration(cfg.Sentiment.CacheMinutes) * time.Minute,
	}
	switch strings.ToUpper(cfg.Sentiment.Source) {
	case "NONE":
		return nil
	case "SCRAPE":
		return NewService(NewScraper(nil, 30*time.Second), svcCfg)
	default:
		return NewService(StaticHeadlines{}, svcCfg)
	}
}

// Score returns the mean headline polarity, or 0.0 when there are no headlines.
func (s *Service) Score(ctx context.Context, symbol string) (float64, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if score, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached sentiment", "symbol", key, "score", score)
		return score, nil
	}

	headlines, err := s.source.Headlines(ctx, key, s.maxHeadlines)
	if err != nil {
		return 0, err
	}
	score := MeanPolarity(headlines)
	s.cache.set(key, score)

	logger.Info(ctx, "News sentiment scored", "symbol", key, "headlines", len(headlines), "score", score)
	return score, nil
}

// ClearCache drops every cached score.
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]cacheEntry)
}
