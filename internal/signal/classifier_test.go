package signal

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/types"
)

func TestClassifyAt(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name  string
		rsi   null.Float
		ma    null.Float
		close float64
		want  types.Signal
	}{
		{"oversold above average", null.FloatFrom(25), null.FloatFrom(100), 110, types.SignalBuy},
		{"oversold below average", null.FloatFrom(25), null.FloatFrom(100), 90, types.SignalNeutral},
		{"overbought", null.FloatFrom(80), null.FloatFrom(100), 90, types.SignalSell},
		{"overbought above average", null.FloatFrom(75), null.FloatFrom(100), 120, types.SignalSell},
		{"mid range", null.FloatFrom(50), null.FloatFrom(100), 110, types.SignalNeutral},
		{"exactly 30", null.FloatFrom(30), null.FloatFrom(100), 110, types.SignalNeutral},
		{"exactly 70", null.FloatFrom(70), null.FloatFrom(100), 110, types.SignalNeutral},
		{"missing rsi", null.Float{}, null.FloatFrom(100), 110, types.SignalNeutral},
		{"missing ma", null.FloatFrom(80), null.Float{}, 110, types.SignalNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAt(tt.rsi, tt.ma, tt.close, th))
		})
	}
}

func TestClassify(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := types.PriceSeries{Symbol: "INFY", Bars: []types.Bar{
		{Time: start, Open: 100, High: 101, Low: 99, Close: 100},
		{Time: start.AddDate(0, 0, 1), Open: 110, High: 111, Low: 109, Close: 110},
		{Time: start.AddDate(0, 0, 2), Open: 90, High: 91, Low: 89, Close: 90},
	}}
	inds := types.IndicatorSeries{Points: []types.IndicatorPoint{
		{},
		{RSI: null.FloatFrom(25), MA: null.FloatFrom(100)},
		{RSI: null.FloatFrom(80), MA: null.FloatFrom(100)},
	}}

	got, err := Classify(series, inds, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, []types.Signal{types.SignalNeutral, types.SignalBuy, types.SignalSell}, got)

	inds.Points = inds.Points[:2]
	_, err = Classify(series, inds, DefaultThresholds())
	assert.ErrorIs(t, err, types.ErrInvalidSeries)
}

func TestTrendAndZone(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, types.TrendBullish, TrendAt(110, null.FloatFrom(100)))
	assert.Equal(t, types.TrendBearish, TrendAt(100, null.FloatFrom(100)))
	assert.Equal(t, types.TrendUnknown, TrendAt(100, null.Float{}))

	assert.Equal(t, types.ZoneOversold, ZoneOf(null.FloatFrom(12), th))
	assert.Equal(t, types.ZoneOverbought, ZoneOf(null.FloatFrom(88), th))
	assert.Equal(t, types.ZoneNeutral, ZoneOf(null.FloatFrom(50), th))
	assert.Equal(t, types.ZoneUnknown, ZoneOf(null.Float{}, th))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Oversold: 70, Overbought: 30}.Validate())
	assert.Error(t, Thresholds{Oversold: 30, Overbought: 130}.Validate())
}
