package datahub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// ParquetCache stores fetched price data as Parquet files on disk, one file
// per symbol and year:
//
//	<Dir>/<SYMBOL>/<YYYY>.parquet
//
// It lets repeated backtests replay the same window without hitting the
// hub, and satisfies the engine's bar source contract.
type ParquetCache struct {
	Dir string
}

// NewParquetCache creates a cache rooted at dir.
func NewParquetCache(dir string) *ParquetCache {
	return &ParquetCache{Dir: dir}
}

// barRecord is the on-disk Parquet schema for one bar.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// WriteBars merges bars into the cache, grouped by year. Existing records
// for the same timestamp are replaced by incoming ones.
func (c *ParquetCache) WriteBars(symbol string, bars []market.Bar) error {
	if symbol == "" {
		return fmt.Errorf("datahub: symbol is required")
	}
	if len(bars) == 0 {
		return nil
	}

	groups := make(map[int][]barRecord)
	for _, b := range bars {
		groups[b.Date.Year()] = append(groups[b.Date.Year()], barRecord{
			Symbol:    symbol,
			Timestamp: b.Date.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for year, records := range groups {
		path := c.barPath(symbol, year)

		// Merge with whatever is already cached for that year.
		existing, _ := readParquetFile[barRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("datahub: write cache for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadBars returns the cached bars for symbol within [from, to], ascending
// by date. Years with no cache file contribute nothing; a fully cold cache
// is an empty result, not an error.
func (c *ParquetCache) ReadBars(symbol string, from, to time.Time) ([]market.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("datahub: symbol is required")
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}

	var bars []market.Bar
	for year := from.Year(); year <= to.Year(); year++ {
		records, err := readParquetFile[barRecord](c.barPath(symbol, year))
		if err != nil {
			// No cache file for this year.
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if ts.Before(from) || ts.After(to) {
				continue
			}
			bars = append(bars, market.Bar{
				Symbol: r.Symbol,
				Date:   ts,
				Open:   r.Open,
				High:   r.High,
				Low:    r.Low,
				Close:  r.Close,
				Volume: r.Volume,
			})
		}
	}

	market.SortBars(bars)
	return bars, nil
}

// GetPriceData satisfies the backtest engine's bar source contract, serving
// entirely from the local cache.
func (c *ParquetCache) GetPriceData(ctx context.Context, symbol string, from, to time.Time) ([]market.Bar, error) {
	_ = ctx // local reads need no cancellation
	return c.ReadBars(symbol, from, to)
}

// Symbols lists the symbols present in the cache.
func (c *ParquetCache) Symbols() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (c *ParquetCache) barPath(symbol string, year int) string {
	return filepath.Join(c.Dir, strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeBarRecords deduplicates by timestamp, preferring incoming records,
// and returns them in time order.
func mergeBarRecords(existing, incoming []barRecord) []barRecord {
	seen := make(map[int64]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
