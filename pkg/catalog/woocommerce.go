package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Remote is the live shop catalog.
type Remote interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]ProductRecord, error)
	ProductsByCategory(ctx context.Context, categoryID int, limit int) ([]ProductRecord, error)
	ProductsByPriceRange(ctx context.Context, min, max int, limit int) ([]ProductRecord, error)
	GetProduct(ctx context.Context, id int) (*ProductRecord, error)
	GetOrder(ctx context.Context, id int) (*OrderRecord, error)
	CustomerOrders(ctx context.Context, phone, email string) ([]OrderRecord, error)
}

const (
	wooAPIPath      = "/wp-json/wc/v3"
	orderPageSize   = 100
	maxOrderPages   = 10
	defaultWooLimit = 20
	wooTracerName   = "catalog.woocommerce"
)

type WooCommerceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	Currency       string
}

// WooCommerceClient talks to the WooCommerce REST API v3. Every call runs
// under its own timeout derived from the caller's context.
type WooCommerceClient struct {
	cfg        WooCommerceConfig
	httpClient *http.Client
}

func NewWooCommerceClient(cfg WooCommerceConfig) *WooCommerceClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &WooCommerceClient{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

type wooProduct struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	StockStatus string `json:"stock_status"`
	Permalink   string `json:"permalink"`
	SKU         string `json:"sku"`
	Categories  []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
}

type wooOrder struct {
	ID          int    `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	DateCreated string `json:"date_created"`
	Billing     struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"billing"`
	LineItems []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Total    string `json:"total"`
	} `json:"line_items"`
}

func (c *WooCommerceClient) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	ctx, span := otel.Tracer(wooTracerName).Start(ctx, op)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + wooAPIPath + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	span.SetAttributes(attribute.String("http.path", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %s: read body: %v", ErrCatalogUnavailable, op, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, resp.Status)
		return fmt.Errorf("%w: %s: status %d", ErrCatalogUnavailable, op, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %s: decode: %v", ErrCatalogUnavailable, op, err)
	}
	return nil
}

func (c *WooCommerceClient) productParams(limit int) url.Values {
	if limit <= 0 || limit > 100 {
		limit = defaultWooLimit
	}
	params := url.Values{}
	params.Set("status", "publish")
	params.Set("per_page", strconv.Itoa(limit))
	return params
}

func (c *WooCommerceClient) listProducts(ctx context.Context, op string, params url.Values) ([]ProductRecord, error) {
	var raw []wooProduct
	if err := c.get(ctx, op, "/products", params, &raw); err != nil {
		return nil, err
	}
	out := make([]ProductRecord, 0, len(raw))
	for _, p := range raw {
		out = append(out, c.toRecord(p))
	}
	return out, nil
}

func (c *WooCommerceClient) SearchProducts(ctx context.Context, query string, limit int) ([]ProductRecord, error) {
	params := c.productParams(limit)
	params.Set("search", query)
	return c.listProducts(ctx, "woocommerce.search_products", params)
}

func (c *WooCommerceClient) ProductsByCategory(ctx context.Context, categoryID int, limit int) ([]ProductRecord, error) {
	params := c.productParams(limit)
	params.Set("category", strconv.Itoa(categoryID))
	return c.listProducts(ctx, "woocommerce.products_by_category", params)
}

func (c *WooCommerceClient) ProductsByPriceRange(ctx context.Context, min, max int, limit int) ([]ProductRecord, error) {
	params := c.productParams(limit)
	params.Set("min_price", strconv.Itoa(min))
	params.Set("max_price", strconv.Itoa(max))
	params.Set("orderby", "price")
	params.Set("order", "asc")
	return c.listProducts(ctx, "woocommerce.products_by_price", params)
}

func (c *WooCommerceClient) GetProduct(ctx context.Context, id int) (*ProductRecord, error) {
	var raw wooProduct
	if err := c.get(ctx, "woocommerce.get_product", "/products/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, err
	}
	rec := c.toRecord(raw)
	return &rec, nil
}

func (c *WooCommerceClient) GetOrder(ctx context.Context, id int) (*OrderRecord, error) {
	var raw wooOrder
	if err := c.get(ctx, "woocommerce.get_order", "/orders/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, err
	}
	rec := toOrderRecord(raw)
	return &rec, nil
}

// CustomerOrders finds orders by billing phone (digits compared in either
// containment direction, so "+49 170 1234567" matches "01701234567") or by
// exact billing email. WooCommerce cannot filter by phone, so orders are
// paged through newest first.
func (c *WooCommerceClient) CustomerOrders(ctx context.Context, phone, email string) ([]OrderRecord, error) {
	wantPhone := digitsOnly(phone)
	wantEmail := strings.ToLower(strings.TrimSpace(email))
	if wantPhone == "" && wantEmail == "" {
		return nil, nil
	}

	var out []OrderRecord
	for page := 1; page <= maxOrderPages; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(orderPageSize))
		params.Set("page", strconv.Itoa(page))
		params.Set("orderby", "date")
		params.Set("order", "desc")
		if wantEmail != "" && wantPhone == "" {
			params.Set("search", wantEmail)
		}

		var raw []wooOrder
		if err := c.get(ctx, "woocommerce.customer_orders", "/orders", params, &raw); err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}

		for _, o := range raw {
			if phoneMatches(wantPhone, o.Billing.Phone) ||
				(wantEmail != "" && strings.EqualFold(o.Billing.Email, wantEmail)) {
				out = append(out, toOrderRecord(o))
			}
		}

		if len(raw) < orderPageSize {
			break
		}
	}
	return out, nil
}

func (c *WooCommerceClient) toRecord(p wooProduct) ProductRecord {
	price, _ := parsePrice(p.Price)
	rec := ProductRecord{
		ID:          p.ID,
		Name:        p.Name,
		Price:       price,
		Currency:    c.cfg.Currency,
		StockStatus: NormalizeStockStatus(p.StockStatus),
		URL:         p.Permalink,
		SKU:         p.SKU,
		Source:      SourceRemote,
	}
	if len(p.Categories) > 0 {
		rec.Category = p.Categories[0].Name
	}
	return rec
}

func toOrderRecord(o wooOrder) OrderRecord {
	total, _ := parsePrice(o.Total)
	created, _ := time.Parse("2006-01-02T15:04:05", o.DateCreated)
	number := o.Number
	if number == "" {
		number = strconv.Itoa(o.ID)
	}

	rec := OrderRecord{
		ID:           o.ID,
		Number:       number,
		Status:       o.Status,
		Total:        total,
		Currency:     o.Currency,
		CreatedAt:    created,
		BillingPhone: o.Billing.Phone,
		BillingEmail: o.Billing.Email,
		Items:        make([]OrderItem, 0, len(o.LineItems)),
	}
	for _, li := range o.LineItems {
		t, _ := parsePrice(li.Total)
		rec.Items = append(rec.Items, OrderItem{Name: li.Name, Quantity: li.Quantity, Total: t})
	}
	return rec
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phoneMatches compares digit strings ignoring country prefixes and leading
// zeros by containment in either direction. Very short numbers never match.
func phoneMatches(want, billing string) bool {
	got := digitsOnly(billing)
	if len(want) < 6 || len(got) < 6 {
		return false
	}
	want = strings.TrimLeft(want, "0")
	got = strings.TrimLeft(got, "0")
	return strings.Contains(got, want) || strings.Contains(want, got)
}
