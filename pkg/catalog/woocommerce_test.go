package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWooServer(t *testing.T, handler http.HandlerFunc) *WooCommerceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWooCommerceClient(WooCommerceConfig{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        time.Second,
	})
}

func TestWooCommerceSearchProducts(t *testing.T) {
	client := newWooServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "publish", r.URL.Query().Get("status"))
		assert.Equal(t, "nj 9238", r.URL.Query().Get("search"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))

		fmt.Fprint(w, `[{"id": 17, "name": "Embraco NJ 9238 GK", "price": "689.00",
			"stock_status": "instock", "permalink": "https://shop.example/nj9238gk",
			"sku": "NJ9238GK", "categories": [{"id": 132, "name": "Kompressoren"}]}]`)
	})

	got, err := client.SearchProducts(context.Background(), "nj 9238", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ProductRecord{
		ID:          17,
		Name:        "Embraco NJ 9238 GK",
		Price:       689,
		Currency:    "EUR",
		StockStatus: StockInStock,
		URL:         "https://shop.example/nj9238gk",
		SKU:         "NJ9238GK",
		Category:    "Kompressoren",
		Source:      SourceRemote,
	}, got[0])
}

func TestWooCommerceCategoryAndPriceParams(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newWooServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.RawQuery)
		mu.Unlock()
		fmt.Fprint(w, `[]`)
	})

	_, err := client.ProductsByCategory(context.Background(), 132, 50)
	require.NoError(t, err)
	_, err = client.ProductsByPriceRange(context.Background(), 0, 500, 50)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Contains(t, seen[0], "category=132")
	assert.Contains(t, seen[1], "min_price=0")
	assert.Contains(t, seen[1], "max_price=500")
}

func TestWooCommerceErrors(t *testing.T) {
	t.Run("server error is unavailable", func(t *testing.T) {
		client := newWooServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.SearchProducts(context.Background(), "x", 5)
		assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	})

	t.Run("not found", func(t *testing.T) {
		client := newWooServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := client.GetOrder(context.Background(), 99)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		client := NewWooCommerceClient(WooCommerceConfig{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})
		_, err := client.SearchProducts(context.Background(), "x", 5)
		assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	})
}

func TestWooCommerceCustomerOrdersByPhone(t *testing.T) {
	client := newWooServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[
			{"id": 501, "number": "501", "status": "processing", "total": "689.00", "currency": "EUR",
			 "date_created": "2026-03-01T10:00:00",
			 "billing": {"phone": "+49 170 1234567", "email": "kunde@example.de"},
			 "line_items": [{"name": "Embraco NJ 9238 GK", "quantity": 1, "total": "689.00"}]},
			{"id": 502, "number": "502", "status": "completed", "total": "89.00", "currency": "EUR",
			 "date_created": "2026-02-01T10:00:00",
			 "billing": {"phone": "030 999999", "email": "other@example.de"},
			 "line_items": []}
		]`)
	})

	orders, err := client.CustomerOrders(context.Background(), "0170 1234567", "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "501", orders[0].Number)
	assert.Equal(t, 689.0, orders[0].Total)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), orders[0].CreatedAt)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 1, orders[0].Items[0].Quantity)

	none, err := client.CustomerOrders(context.Background(), "", "")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestPhoneMatches(t *testing.T) {
	assert.True(t, phoneMatches("01701234567", "+49 170 1234567"))
	assert.True(t, phoneMatches("491701234567", "0170-1234567"))
	assert.False(t, phoneMatches("1234", "1234"))
	assert.False(t, phoneMatches("01701234567", "030 999999"))
}
