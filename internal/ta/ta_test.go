package ta

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	assert.InDelta(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3), 1e-12)
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 3)))
	assert.True(t, math.IsNaN(SMA([]float64{1, 2}, 0)))
}

func TestSMASeries(t *testing.T) {
	got := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 2.0, got[2].Float64, 1e-12)
	assert.InDelta(t, 3.0, got[3].Float64, 1e-12)
	assert.InDelta(t, 4.0, got[4].Float64, 1e-12)
}

func TestSMASeriesWindowProperty(t *testing.T) {
	closes := []float64{10, 11, 13, 12, 15, 14, 16, 18, 17, 19}
	w := 4
	got := SMASeries(closes, w)
	for i := w - 1; i < len(closes); i++ {
		sum := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += closes[j]
		}
		assert.InDelta(t, sum/float64(w), got[i].Float64, 1e-9, "index %d", i)
	}
}

func TestRSISeriesHandComputed(t *testing.T) {
	// deltas: +1, -1, +2
	got := RSISeries([]float64{44, 45, 44, 46}, 2)
	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 50.0, got[2].Float64, 1e-9)
	assert.InDelta(t, 200.0/3.0, got[3].Float64, 1e-9)
}

func TestWilderRSISeriesHandComputed(t *testing.T) {
	got := WilderRSISeries([]float64{44, 45, 44, 46}, 2)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 50.0, got[2].Float64, 1e-9)
	// avg gain 1.25, avg loss 0.25
	assert.InDelta(t, 100.0-100.0/6.0, got[3].Float64, 1e-9)
}

func TestRSIMonotonicAndFlat(t *testing.T) {
	up := make([]float64, 20)
	down := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
		flat[i] = 100
	}

	for name, fn := range map[string]func([]float64, int) []null.Float{
		"simple": RSISeries,
		"wilder": WilderRSISeries,
	} {
		u, d, f := fn(up, 14), fn(down, 14), fn(flat, 14)
		for i := 0; i < 14; i++ {
			assert.False(t, u[i].Valid, "%s: index %d should be undefined", name, i)
		}
		for i := 14; i < 20; i++ {
			assert.Equal(t, 100.0, u[i].Float64, "%s rising", name)
			assert.Equal(t, 0.0, d[i].Float64, "%s falling", name)
			assert.Equal(t, 50.0, f[i].Float64, "%s flat", name)
		}
	}
}

func TestEMASeries(t *testing.T) {
	in := []null.Float{null.FloatFrom(100), null.FloatFrom(102), null.FloatFrom(104), null.FloatFrom(103), null.FloatFrom(105)}
	got := EMASeries(in, 3)
	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 102.0, got[2].Float64, 1e-9)
	assert.InDelta(t, 102.5, got[3].Float64, 1e-9)
	assert.InDelta(t, 103.75, got[4].Float64, 1e-9)
}

func TestEMASeriesSkipsLeadingNulls(t *testing.T) {
	in := []null.Float{{}, {}, null.FloatFrom(2), null.FloatFrom(4), null.FloatFrom(6)}
	got := EMASeries(in, 2)
	assert.False(t, got[2].Valid)
	assert.InDelta(t, 3.0, got[3].Float64, 1e-9)
	// alpha 2/3
	assert.InDelta(t, 5.0, got[4].Float64, 1e-9)
}

func TestMACDSeries(t *testing.T) {
	macd, sig, hist := MACDSeries([]float64{1, 2, 3, 4, 5, 6}, 2, 3, 2)

	assert.False(t, macd[1].Valid)
	for i := 2; i < 6; i++ {
		assert.InDelta(t, 0.5, macd[i].Float64, 1e-9, "macd %d", i)
	}
	assert.False(t, sig[2].Valid)
	assert.False(t, hist[2].Valid)
	for i := 3; i < 6; i++ {
		assert.InDelta(t, 0.5, sig[i].Float64, 1e-9, "signal %d", i)
		assert.InDelta(t, 0.0, hist[i].Float64, 1e-9, "hist %d", i)
	}
}

func TestStdDevAndMean(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(vals), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(vals, len(vals)), 1e-12)
	assert.True(t, math.IsNaN(StdDev([]float64{1}, 1)))
	assert.True(t, math.IsNaN(Mean(nil)))
}
