package backtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSourceReadsBars(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `symbol,date,open,high,low,close,volume
AAPL,2024-01-03,184,186,183,185,1200
AAPL,2024-01-02,183,185,182,184,1100
MSFT,2024-01-02,370,372,369,371,900
`)

	source := &CSVSource{Path: path}
	bars, err := source.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 2, "other symbols are filtered out")

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, "2024-01-02", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, 184.0, bars[0].Close)
	assert.Equal(t, "2024-01-03", bars[1].Date.Format("2006-01-02"))
	assert.Equal(t, 1200.0, bars[1].Volume)
}

func TestCSVSourceStampsMissingSymbol(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `date,open,high,low,close,volume
2024-01-02,183,185,182,184,1100
`)

	source := &CSVSource{Path: path}
	bars, err := source.GetPriceData(context.Background(), "TSLA", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "TSLA", bars[0].Symbol)
}

func TestCSVSourceRangeFilter(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `symbol,date,open,high,low,close,volume
AAPL,2024-01-02,1,1,1,1,1
AAPL,2024-01-03,2,2,2,2,2
AAPL,2024-01-04,3,3,3,3,3
`)
	source := &CSVSource{Path: path}

	from := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	bars, err := source.GetPriceData(context.Background(), "AAPL", from, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2.0, bars[0].Close)

	to := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	bars, err = source.GetPriceData(context.Background(), "AAPL", time.Time{}, to)
	require.NoError(t, err)
	require.Len(t, bars, 2, "the range is inclusive on both ends")
	assert.Equal(t, 2.0, bars[1].Close)
}

func TestCSVSourceTimestampDates(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `date,open,high,low,close,volume
2024-01-02T00:00:00Z,183,185,182,184,1100
`)

	source := &CSVSource{Path: path}
	bars, err := source.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "2024-01-02", bars[0].Date.UTC().Format("2006-01-02"))
}

func TestCSVSourceErrors(t *testing.T) {
	t.Parallel()

	missing := &CSVSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := missing.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	assert.Error(t, err)

	badHeader := &CSVSource{Path: writeTempCSV(t, "date,open\n2024-01-02,1\n")}
	_, err = badHeader.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "high"`)

	badDate := &CSVSource{Path: writeTempCSV(t, "date,open,high,low,close,volume\n01/02/2024,1,1,1,1,1\n")}
	_, err = badDate.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	badFloat := &CSVSource{Path: writeTempCSV(t, "date,open,high,low,close,volume\n2024-01-02,1,1,1,abc,1\n")}
	_, err = badFloat.GetPriceData(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse close")
}
