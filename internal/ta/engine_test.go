package ta

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/types"
)

func seriesFromCloses(closes ...float64) types.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := types.PriceSeries{Symbol: "TEST", Bars: make([]types.Bar, len(closes))}
	for i, c := range closes {
		s.Bars[i] = types.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return s
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/5) + 0.1*float64(i)
	}
	return out
}

func TestComputeDefinedRanges(t *testing.T) {
	got, err := Compute(seriesFromCloses(wave(60)...), DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 60, got.Len())
	assert.Equal(t, 50, got.MAWindow)

	p := got.Points
	assert.False(t, p[48].MA.Valid)
	assert.True(t, p[49].MA.Valid)
	assert.False(t, p[13].RSI.Valid)
	assert.True(t, p[14].RSI.Valid)
	assert.False(t, p[24].MACD.Valid)
	assert.True(t, p[25].MACD.Valid)
	assert.False(t, p[32].MACDHist.Valid)
	assert.True(t, p[33].MACDHist.Valid)
	assert.InDelta(t, p[40].MACD.Float64-p[40].MACDSignal.Float64, p[40].MACDHist.Float64, 1e-12)
}

func TestComputeRSIBounds(t *testing.T) {
	for _, method := range []string{RSISimple, RSIWilder} {
		cfg := DefaultConfig()
		cfg.RSIMethod = method
		got, err := Compute(seriesFromCloses(wave(200)...), cfg)
		require.NoError(t, err)
		for i, pt := range got.Points {
			if pt.RSI.Valid {
				assert.GreaterOrEqual(t, pt.RSI.Float64, 0.0, "%s index %d", method, i)
				assert.LessOrEqual(t, pt.RSI.Float64, 100.0, "%s index %d", method, i)
			}
		}
	}
}

func TestComputePrefixConsistency(t *testing.T) {
	full := seriesFromCloses(wave(120)...)
	whole, err := Compute(full, DefaultConfig())
	require.NoError(t, err)

	for _, k := range []int{2, 14, 15, 26, 34, 50, 51, 90} {
		prefix := types.PriceSeries{Symbol: full.Symbol, Bars: full.Bars[:k]}
		part, err := Compute(prefix, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, whole.Points[:k], part.Points, "prefix length %d", k)
	}
}

func TestComputeIdempotent(t *testing.T) {
	s := seriesFromCloses(wave(80)...)
	a, err := Compute(s, DefaultConfig())
	require.NoError(t, err)
	b, err := Compute(s, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeShortSeries(t *testing.T) {
	empty, err := Compute(types.PriceSeries{Symbol: "X"}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	cfg := DefaultConfig()
	cfg.MAWindow = 1
	one, err := Compute(seriesFromCloses(100), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, one.Len())
	pt := one.Points[0]
	assert.False(t, pt.MA.Valid)
	assert.False(t, pt.RSI.Valid)
	assert.False(t, pt.MACD.Valid)
	assert.False(t, pt.MACDHist.Valid)
}

func TestComputeRejectsUnorderedSeries(t *testing.T) {
	s := seriesFromCloses(100, 101, 102)
	s.Bars[2].Time = s.Bars[1].Time
	_, err := Compute(s, DefaultConfig())
	assert.ErrorIs(t, err, types.ErrInvalidSeries)

	s = seriesFromCloses(100, 101, 102)
	s.Bars[0], s.Bars[1] = s.Bars[1], s.Bars[0]
	_, err = Compute(s, DefaultConfig())
	assert.ErrorIs(t, err, types.ErrInvalidSeries)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MAWindow = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MACDFast = 30
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.RSIMethod = "EMA"
	assert.Error(t, bad.Validate())

	_, err := Compute(seriesFromCloses(1, 2, 3), bad)
	assert.Error(t, err)
}
