package ta

import (
	"math"

	"github.com/guregu/null/v6"
)

// SMA returns the mean of the last n values, or NaN when there are fewer than n.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// SMASeries returns the trailing n-period mean at every index; null for i < n-1.
func SMASeries(closes []float64, n int) []null.Float {
	out := make([]null.Float, len(closes))
	if n <= 0 {
		return out
	}
	for i := n - 1; i < len(closes); i++ {
		out[i] = null.FloatFrom(SMA(closes[:i+1], n))
	}
	return out
}

// splitDeltas returns per-bar gains and losses (both non-negative). Index 0 is unused.
func splitDeltas(closes []float64) (gains, losses []float64) {
	gains = make([]float64, len(closes))
	losses = make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	return gains, losses
}

// rsiFromAverages maps average gain/loss to RSI. A flat window reads 50.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// RSI returns the simple-average RSI of the last period deltas, or NaN when
// fewer than period+1 closes are available.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	return rsiFromAverages(gain/float64(period), loss/float64(period))
}

// RSISeries computes the simple-average RSI at every index; null for i < period.
func RSISeries(closes []float64, period int) []null.Float {
	out := make([]null.Float, len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		out[i] = null.FloatFrom(RSI(closes[:i+1], period))
	}
	return out
}

// WilderRSISeries seeds with the simple average of the first period deltas
// and then applies Wilder smoothing. Null for i < period.
func WilderRSISeries(closes []float64, period int) []null.Float {
	out := make([]null.Float, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	gains, losses := splitDeltas(closes)

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = null.FloatFrom(rsiFromAverages(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
		out[i] = null.FloatFrom(rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

// EMASeries computes an exponential moving average with alpha 2/(period+1).
// Leading null inputs are skipped; the first defined output is the simple
// mean of the first period defined inputs.
func EMASeries(vals []null.Float, period int) []null.Float {
	out := make([]null.Float, len(vals))
	if period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)

	count := 0
	sum := 0.0
	var prev float64
	for i, v := range vals {
		if !v.Valid {
			if count > 0 {
				// a gap after the series started ends it
				break
			}
			continue
		}
		if count < period {
			sum += v.Float64
			count++
			if count == period {
				prev = sum / float64(period)
				out[i] = null.FloatFrom(prev)
			}
			continue
		}
		prev = alpha*v.Float64 + (1-alpha)*prev
		out[i] = null.FloatFrom(prev)
	}
	return out
}

// MACDSeries returns the MACD line, its signal line and the histogram.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, sig, hist []null.Float) {
	in := make([]null.Float, len(closes))
	for i, c := range closes {
		in[i] = null.FloatFrom(c)
	}
	fastEMA := EMASeries(in, fast)
	slowEMA := EMASeries(in, slow)

	macd = make([]null.Float, len(closes))
	for i := range closes {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			macd[i] = null.FloatFrom(fastEMA[i].Float64 - slowEMA[i].Float64)
		}
	}

	sig = EMASeries(macd, signal)
	hist = make([]null.Float, len(closes))
	for i := range closes {
		if macd[i].Valid && sig[i].Valid {
			hist[i] = null.FloatFrom(macd[i].Float64 - sig[i].Float64)
		}
	}
	return macd, sig, hist
}

// Mean of all values; NaN when empty.
func Mean(vals []float64) float64 {
	return SMA(vals, len(vals))
}

// StdDev returns the sample standard deviation (n-1 denominator) of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 1 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n-1))
}
