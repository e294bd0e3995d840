// Package datahub is the client for the EETC Data Hub API: historical
// prices, fundamentals, macro indicators and order records.
package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/east-empire-trading-company/eetc-utils/market"
)

// DefaultBaseURL is the production EETC Data Hub deployment.
const DefaultBaseURL = "https://eetc-data-hub-service-nb7ewdzv6q-ue.a.run.app/api"

// wireDateLayout is the yyyy-mm-dd format the hub speaks.
const wireDateLayout = "2006-01-02"

// Client talks to the EETC Data Hub. Authentication is an EETC-API-Key
// header on every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-production hub.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an EETC Data Hub client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PriceQuery narrows GetPriceData. Dates use the yyyy-mm-dd wire format;
// Date is mutually exclusive with FromDate/ToDate.
type PriceQuery struct {
	Date     string
	FromDate string
	ToDate   string
}

// priceRow is one record of the /price response.
type priceRow struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// GetPriceData fetches historical OHLCV rows for symbol, sorted ascending
// by date. An empty window is an empty slice, not an error.
func (c *Client) GetPriceData(ctx context.Context, symbol string, q PriceQuery) ([]market.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("datahub: symbol is required")
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	if q.FromDate != "" {
		params.Set("from_date", q.FromDate)
	}
	if q.ToDate != "" {
		params.Set("to_date", q.ToDate)
	}

	var rows []priceRow
	if err := c.get(ctx, "/price/", params, &rows); err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(rows))
	for _, r := range rows {
		date, err := parseWireDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("datahub: parse date %q: %w", r.Date, err)
		}
		bars = append(bars, market.Bar{
			Symbol: r.Symbol,
			Date:   date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	market.SortBars(bars)

	c.logger.Debug("datahub price data", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

// FundamentalsQuery narrows GetFundamentals.
type FundamentalsQuery struct {
	Frequency string // "Yearly" or "Quarterly" (default)
	Name      string
	Year      int
}

// GetFundamentals fetches fundamentals rows for symbol. The hub's row shape
// varies by statement, so rows come back as generic JSON objects.
func (c *Client) GetFundamentals(ctx context.Context, symbol string, q FundamentalsQuery) ([]map[string]any, error) {
	if symbol == "" {
		return nil, fmt.Errorf("datahub: symbol is required")
	}
	if q.Frequency == "" {
		q.Frequency = "Quarterly"
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("frequency", q.Frequency)
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Year != 0 {
		params.Set("year", strconv.Itoa(q.Year))
	}

	var rows []map[string]any
	if err := c.get(ctx, "/fundamentals/", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// IndicatorQuery narrows GetIndicatorData.
type IndicatorQuery struct {
	Frequency string // "Yearly", "Quarterly", "Monthly", "Weekly" or "Daily"
	FromDate  string
	ToDate    string
}

// IndicatorValue is one observation of a macroeconomic indicator.
type IndicatorValue struct {
	Name      string  `json:"name"`
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Frequency string  `json:"frequency"`
}

// GetIndicatorData fetches observations of the named macro indicator,
// sorted ascending by date.
func (c *Client) GetIndicatorData(ctx context.Context, name string, q IndicatorQuery) ([]IndicatorValue, error) {
	if name == "" {
		return nil, fmt.Errorf("datahub: indicator name is required")
	}

	params := url.Values{}
	params.Set("name", name)
	if q.Frequency != "" {
		params.Set("frequency", q.Frequency)
	}
	if q.FromDate != "" {
		params.Set("from_date", q.FromDate)
	}
	if q.ToDate != "" {
		params.Set("to_date", q.ToDate)
	}

	var rows []IndicatorValue
	if err := c.get(ctx, "/indicators/", params, &rows); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// GetIndicatorNames lists the supported macro indicators grouped by
// frequency.
func (c *Client) GetIndicatorNames(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	if err := c.get(ctx, "/indicators/names/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompanies lists the companies the hub covers, optionally filtered by
// index ("SP500", "NASDAQ100", ...).
func (c *Client) GetCompanies(ctx context.Context, index string) (map[string]any, error) {
	params := url.Values{}
	if index != "" {
		params.Set("index", index)
	}

	var out map[string]any
	if err := c.get(ctx, "/companies/", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderRecord is one trading order as stored in the hub.
type OrderRecord struct {
	OrderID    string  `json:"order_id"`
	AssetType  string  `json:"asset_type"`
	Action     string  `json:"action"`
	Symbol     string  `json:"symbol"`
	Size       int     `json:"size"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Exchange   string  `json:"exchange"`
	Strategy   string  `json:"strategy"`
	Broker     string  `json:"broker"`
	Strike     float64 `json:"strike,omitempty"`
	Right      string  `json:"right,omitempty"`
	PositionID string  `json:"position_id,omitempty"`
}

// OrdersQuery filters GetOrders; zero fields are omitted.
type OrdersQuery struct {
	OrderID    string
	AssetType  string
	Action     string
	Symbol     string
	Strike     float64
	Right      string
	Currency   string
	Exchange   string
	Strategy   string
	Broker     string
	PositionID string
}

// GetOrders retrieves order records matching the query.
func (c *Client) GetOrders(ctx context.Context, q OrdersQuery) ([]OrderRecord, error) {
	params := url.Values{}
	setIf := func(key, val string) {
		if val != "" {
			params.Set(key, val)
		}
	}
	setIf("order_id", q.OrderID)
	setIf("asset_type", q.AssetType)
	setIf("action", q.Action)
	setIf("symbol", q.Symbol)
	setIf("right", q.Right)
	setIf("currency", q.Currency)
	setIf("exchange", q.Exchange)
	setIf("strategy", q.Strategy)
	setIf("broker", q.Broker)
	setIf("position_id", q.PositionID)
	if q.Strike != 0 {
		params.Set("strike", strconv.FormatFloat(q.Strike, 'f', -1, 64))
	}

	var out []OrderRecord
	if err := c.get(ctx, "/orders/", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveOrders stores one or more orders in the hub.
func (c *Client) SaveOrders(ctx context.Context, orders []OrderRecord) error {
	if len(orders) == 0 {
		return fmt.Errorf("datahub: no orders to save")
	}

	body, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("datahub: encode orders: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("datahub: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("EETC-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("datahub: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("datahub: API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("datahub: create request: %w", err)
	}
	req.Header.Set("EETC-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("datahub: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("datahub: API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("datahub: decode response: %w", err)
	}
	return nil
}

// parseWireDate accepts the hub's yyyy-mm-dd dates plus RFC3339 timestamps.
func parseWireDate(s string) (time.Time, error) {
	if t, err := time.Parse(wireDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
