package backtest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// BarSource feeds historical bars to the engine. datahub.Source,
// datahub.ParquetCache and CSVSource all satisfy it.
type BarSource interface {
	GetPriceData(ctx context.Context, symbol string, from, to time.Time) ([]market.Bar, error)
}

// CSVSource replays bars from a CSV file with a
// `symbol,date,open,high,low,close,volume` header. The symbol column may
// be omitted, in which case the requested symbol is stamped on every bar.
type CSVSource struct {
	Path string
}

// GetPriceData reads the file and returns bars for symbol within
// [from, to], ascending by date. Zero bounds leave that side open.
func (s *CSVSource) GetPriceData(ctx context.Context, symbol string, from, to time.Time) ([]market.Bar, error) {
	_ = ctx // local reads need no cancellation

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("backtest: open csv: %w", err)
	}
	defer f.Close()

	bars, err := readBarCSV(f, symbol)
	if err != nil {
		return nil, err
	}
	market.SortBars(bars)
	return market.FilterRange(bars, from, to), nil
}

func readBarCSV(r io.Reader, symbol string) ([]market.Bar, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("backtest: csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("backtest: read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("backtest: csv is missing column %q", required)
		}
	}

	var bars []market.Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("backtest: read csv: %w", err)
		}
		line++

		rowSymbol := symbol
		if i, ok := cols["symbol"]; ok && record[i] != "" {
			rowSymbol = record[i]
		}
		if symbol != "" && !strings.EqualFold(rowSymbol, symbol) {
			continue
		}

		date, err := parseBarDate(record[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("backtest: csv line %d: %w", line, err)
		}

		var fields [5]float64
		for i, name := range []string{"open", "high", "low", "close", "volume"} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[cols[name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("backtest: csv line %d: parse %s: %w", line, name, err)
			}
			fields[i] = v
		}

		bars = append(bars, market.Bar{
			Symbol: rowSymbol,
			Date:   date,
			Open:   fields[0],
			High:   fields[1],
			Low:    fields[2],
			Close:  fields[3],
			Volume: fields[4],
		})
	}
	return bars, nil
}

// parseBarDate accepts plain dates and RFC3339 timestamps.
func parseBarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}
