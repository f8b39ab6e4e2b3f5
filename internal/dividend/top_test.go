package dividend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-analysis-bot/internal/types"
)

type fakeSource struct {
	rows    []types.RawDividendRow
	err     error
	gotPool int
}

func (f *fakeSource) FetchCandidates(ctx context.Context, limit int) ([]types.RawDividendRow, error) {
	f.gotPool = limit
	if f.err != nil {
		return []types.RawDividendRow{}, f.err
	}
	return f.rows, nil
}

func TestTop(t *testing.T) {
	src := &fakeSource{rows: []types.RawDividendRow{
		{Name: "A", Href: "/company/A/", Yield: "3.2%"},
		{Name: "B", Href: "/company/B/", Yield: "bad"},
		{Name: "C", Href: "/company/C/", Yield: "5.0%"},
	}}
	got, err := Top(context.Background(), src, 25, 1)
	require.NoError(t, err)
	assert.Equal(t, 25, src.gotPool)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Symbol)

	_, err = Top(context.Background(), src, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, src.gotPool)
}

func TestTopFetchFailure(t *testing.T) {
	got, err := Top(context.Background(), &fakeSource{err: types.ErrDataUnavailable}, 25, 5)
	assert.ErrorIs(t, err, types.ErrDataUnavailable)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
