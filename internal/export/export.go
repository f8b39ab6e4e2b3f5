// Package export writes an analysis as a CSV indicator table.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/guregu/null/v6"

	"stock-analysis-bot/internal/types"
)

// Reading is an indicator value written with two decimals, or empty when undefined.
type Reading null.Float

func (r Reading) MarshalCSV() (string, error) {
	if !r.Valid {
		return "", nil
	}
	return fmt.Sprintf("%.2f", r.Float64), nil
}

type Row struct {
	Date     string  `csv:"Date"`
	Close    Reading `csv:"Close"`
	MA       Reading `csv:"MA"`
	RSI      Reading `csv:"RSI"`
	MACD     Reading `csv:"MACD"`
	MACDHist Reading `csv:"MACD_Hist"`
	Signal   string  `csv:"Signal"`
}

// Rows aligns bars, indicator points and signals into table rows.
func Rows(a *types.Analysis) ([]*Row, error) {
	if a == nil {
		return nil, errors.New("no analysis loaded")
	}
	n := a.Series.Len()
	if a.Indicators.Len() != n || len(a.Signals) != n {
		return nil, fmt.Errorf("%w: %d bars, %d indicator points, %d signals", types.ErrInvalidSeries, n, a.Indicators.Len(), len(a.Signals))
	}
	rows := make([]*Row, n)
	for i, bar := range a.Series.Bars {
		pt := a.Indicators.Points[i]
		rows[i] = &Row{
			Date:     bar.Time.Format("2006-01-02"),
			Close:    Reading(null.FloatFrom(bar.Close)),
			MA:       Reading(pt.MA),
			RSI:      Reading(pt.RSI),
			MACD:     Reading(pt.MACD),
			MACDHist: Reading(pt.MACDHist),
			Signal:   string(a.Signals[i]),
		}
	}
	return rows, nil
}

// Write encodes the table with a header row.
func Write(w io.Writer, a *types.Analysis) error {
	rows, err := Rows(a)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}

// WriteFile creates or truncates path and writes the table to it.
func WriteFile(path string, a *types.Analysis) error {
	rows, err := Rows(a)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(rows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
