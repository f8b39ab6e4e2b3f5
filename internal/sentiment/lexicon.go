package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// lexicon maps lower-case words to a polarity in [-1, 1]. It is tuned for
// market headlines rather than general prose.
var lexicon = map[string]float64{
	"beat": 0.6, "beats": 0.6, "bullish": 0.8, "boost": 0.5, "boosts": 0.5,
	"gain": 0.5, "gains": 0.5, "good": 0.7, "great": 0.8, "growth": 0.5,
	"high": 0.3, "highs": 0.5, "jump": 0.5, "jumps": 0.5, "new": 0.15,
	"outperform": 0.6, "positive": 0.6, "profit": 0.5, "rally": 0.6,
	"rallies": 0.6, "record": 0.4, "rise": 0.4, "rises": 0.4, "soar": 0.7,
	"soars": 0.7, "strong": 0.5, "surge": 0.7, "surges": 0.7, "upgrade": 0.6,
	"upgraded": 0.6, "win": 0.6, "wins": 0.6,

	"bad": -0.7, "bearish": -0.8, "crash": -0.8, "crashes": -0.8,
	"cut": -0.4, "cuts": -0.4, "decline": -0.5, "declines": -0.5,
	"downgrade": -0.6, "downgraded": -0.6, "drop": -0.4, "drops": -0.4,
	"fall": -0.4, "falls": -0.4, "fraud": -0.9, "lawsuit": -0.6, "loss": -0.5,
	"losses": -0.5, "low": -0.3, "lows": -0.5, "miss": -0.5, "misses": -0.5,
	"negative": -0.6, "plunge": -0.7, "plunges": -0.7, "probe": -0.4,
	"slump": -0.6, "slumps": -0.6, "tumble": -0.6, "tumbles": -0.6,
	"weak": -0.5, "worst": -0.9,
}

var intensifiers = map[string]float64{
	"very": 1.3, "sharply": 1.5, "extremely": 1.5, "slightly": 0.5, "marginally": 0.5,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
}

// Polarity scores a headline in [-1, 1] as the mean polarity of its
// sentiment-bearing words. A negation flips and halves the next scored
// word; an intensifier scales it. Headlines with no known words score 0.
func Polarity(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sum float64
	var n int
	scale, negate := 1.0, false
	for _, w := range words {
		if negations[w] || strings.HasSuffix(w, "n't") {
			negate = true
			continue
		}
		if f, ok := intensifiers[w]; ok {
			scale *= f
			continue
		}
		p, ok := lexicon[w]
		if !ok {
			continue
		}
		p *= scale
		if negate {
			p *= -0.5
		}
		sum += math.Max(-1, math.Min(1, p))
		n++
		scale, negate = 1.0, false
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MeanPolarity averages Polarity over headlines; no headlines yields 0.
func MeanPolarity(headlines []string) float64 {
	if len(headlines) == 0 {
		return 0
	}
	var sum float64
	for _, h := range headlines {
		sum += Polarity(h)
	}
	return sum / float64(len(headlines))
}
