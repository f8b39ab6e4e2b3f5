package dividend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/types"
)

func TestParseYield(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"3.2%", 3.2, false},
		{" 5.0 % ", 5.0, false},
		{"4.25", 4.25, false},
		{"3,25", 3.25, false},
		{"1,234.5", 1234.5, false},
		{"1,234", 1234, false},
		{"1.234,5", 1234.5, false},
		{"2.345.678,9", 2345678.9, false},
		{"5.", 5, false},
		{"0x1p2", 0, true},
		{"0X10", 0, true},
		{"1e2", 0, true},
		{"1,2,3", 0, true},
		{"0", 0, false},
		{"7.1 %", 7.1, false},
		{"bad", 0, true},
		{"", 0, true},
		{"%", 0, true},
		{"-1.5", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYield(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnparsableRecord)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractSymbol(t *testing.T) {
	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"/company/ITC/", "ITC", true},
		{"/company/coalindia/consolidated/", "COALINDIA", true},
		{"https://www.screener.in/company/VEDL/?q=1", "VEDL", true},
		{"ongc", "ONGC", true},
		{"", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractSymbol(tt.href)
		assert.Equal(t, tt.ok, ok, tt.href)
		assert.Equal(t, tt.want, got, tt.href)
	}
}

func TestRank(t *testing.T) {
	rows := []types.RawDividendRow{
		{Name: "A", Href: "/company/A/", Yield: "3.2%"},
		{Name: "B", Href: "/company/B/", Yield: "bad"},
		{Name: "C", Href: "/company/C/", Yield: "5.0%"},
	}
	got := Rank(rows, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Symbol)
	assert.Equal(t, 5.0, got[0].YieldPercent)
	assert.Equal(t, "A", got[1].Symbol)
	assert.Equal(t, 3.2, got[1].YieldPercent)
}

func TestRankStableDedupedAndLimited(t *testing.T) {
	rows := []types.RawDividendRow{
		{Name: "First", Href: "/company/X/", Yield: "4"},
		{Name: "Second", Href: "/company/Y/", Yield: "4"},
		{Name: "No link", Href: "", Yield: "9"},
		{Name: "Dup", Href: "/company/x/consolidated/", Yield: "8"},
		{Name: "Third", Href: "/company/Z/", Yield: "6"},
		{Name: "Fourth", Href: "/company/W/", Yield: "1"},
	}
	got := Rank(rows, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Z", "X", "Y"}, []string{got[0].Symbol, got[1].Symbol, got[2].Symbol})
	assert.Equal(t, "First", got[1].CompanyName)
}

func TestRankEmpty(t *testing.T) {
	got := Rank(nil, 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Rank([]types.RawDividendRow{{Name: "B", Href: "/company/B/", Yield: "n/a"}}, 5)
	assert.Empty(t, got)

	got = Rank([]types.RawDividendRow{{Name: "A", Href: "/company/A/", Yield: "2"}}, 0)
	assert.Empty(t, got)
}
