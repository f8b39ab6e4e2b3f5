// Package dividend fetches and ranks high dividend-yield shares.
package dividend

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"stock-analysis-bot/internal/types"
)

var (
	thousandsGrouping = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	plainDecimal      = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
)

// ParseYield converts scraped yield text such as "5.2 %" or "3,25" to a percentage.
// A lone comma is read as a decimal separator unless it groups thousands. With
// both separators present the last one is the decimal point, so "1,234.5" and
// "1.234,5" agree. Anything but plain digits afterwards is rejected.
func ParseYield(text string) (float64, error) {
	s := strings.ReplaceAll(text, "\u00a0", "")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, fmt.Errorf("%w: empty yield", types.ErrUnparsableRecord)
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case thousandsGrouping.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	}

	if !plainDecimal.MatchString(s) {
		return 0, fmt.Errorf("%w: yield %q", types.ErrUnparsableRecord, text)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: yield %q", types.ErrUnparsableRecord, text)
	}
	return v, nil
}

// viewQualifiers are trailing path segments screener.in appends to company links.
var viewQualifiers = map[string]bool{"consolidated": true, "standalone": true}

// ExtractSymbol returns the upper-cased last path segment of a company link,
// skipping a trailing consolidated/standalone qualifier.
func ExtractSymbol(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(parts[i])
		if seg == "" || (viewQualifiers[strings.ToLower(seg)] && i > 0) {
			continue
		}
		return strings.ToUpper(seg), true
	}
	return "", false
}

// Normalize turns a raw row into a record or reports why it cannot be used.
func Normalize(row types.RawDividendRow) (types.DividendRecord, error) {
	sym, ok := ExtractSymbol(row.Href)
	if !ok {
		return types.DividendRecord{}, fmt.Errorf("%w: row %q has no company link", types.ErrUnparsableRecord, row.Name)
	}
	y, err := ParseYield(row.Yield)
	if err != nil {
		return types.DividendRecord{}, err
	}
	return types.DividendRecord{
		Symbol:       sym,
		CompanyName:  strings.TrimSpace(row.Name),
		YieldPercent: y,
	}, nil
}

// Rank keeps the usable rows, drops repeated symbols (first occurrence wins),
// orders by yield descending with ties in input order and returns at most
// limit records. It never fails; a result may be empty.
func Rank(rows []types.RawDividendRow, limit int) []types.DividendRecord {
	out := make([]types.DividendRecord, 0, len(rows))
	if limit <= 0 {
		return out
	}
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		rec, err := Normalize(row)
		if err != nil {
			continue
		}
		if _, dup := seen[rec.Symbol]; dup {
			continue
		}
		seen[rec.Symbol] = struct{}{}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].YieldPercent > out[j].YieldPercent
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
