package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/internal/catalog"
	"MiniCart/internal/inventory"
	"MiniCart/internal/kvstore"
	"MiniCart/internal/storefront"
)

type line struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PriceCents    int64  `json:"price_cents"`
	Image         string `json:"image"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type cartBody struct {
	Items      []line         `json:"items"`
	Quantities map[string]int `json:"quantities"`
	TotalCents int64          `json:"total_cents"`
}

type mutationBody struct {
	Cart          cartBody           `json:"cart"`
	Notifications []storefront.Toast `json:"notifications"`
}

type stack struct {
	ts    *httptest.Server
	store *kvstore.MemStore
	items *catalog.MemStore
}

func newStack(t *testing.T, deps storefront.HTTPDeps) *stack {
	t.Helper()

	items := catalog.NewMemStore()
	items.Put(catalog.Product{ID: 100, Title: "Sold out", PriceCents: 500, Image: "so.jpg"}, 0)

	catalogTS := httptest.NewServer(catalog.NewHandler(&catalog.Server{Store: items}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	}))
	t.Cleanup(catalogTS.Close)

	inv := inventory.NewClient(catalogTS.URL)
	store := kvstore.NewMemStore()

	engine, err := cart.New(context.Background(), cart.Config{
		Stock:   inv,
		Catalog: inv,
		Store:   store,
		Notify:  storefront.ToastNotifier{Log: zap.NewNop()},
	})
	require.NoError(t, err)

	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Service = "storefront"

	ts := httptest.NewServer(storefront.NewHandler(&storefront.Server{
		Cart:     engine,
		Products: inv,
		Store:    store,
	}, deps))
	t.Cleanup(ts.Close)

	return &stack{ts: ts, store: store, items: items}
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func messages(ts []storefront.Toast) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Message)
	}
	return out
}

func TestStorefront_CartFlow(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{})
	base := s.ts.URL

	var m mutationBody
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/3", nil, &m))
	require.Empty(t, m.Notifications)
	require.Len(t, m.Cart.Items, 1)
	assert.Equal(t, int64(3), m.Cart.Items[0].ID)
	assert.Equal(t, "Duramo Lite 2.0 Running Shoe", m.Cart.Items[0].Title)
	assert.Equal(t, 1, m.Cart.Items[0].Quantity)

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/3", nil, &m))
	assert.Equal(t, 2, m.Cart.Items[0].Quantity)
	assert.Equal(t, int64(2*21990), m.Cart.TotalCents)
	assert.Equal(t, int64(2*21990), m.Cart.Items[0].SubtotalCents)

	// Stock for product 3 is 2.
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/3", nil, &m))
	assert.Equal(t, 2, m.Cart.Items[0].Quantity)
	require.Len(t, m.Notifications, 1)
	assert.Equal(t, cart.MsgOutOfStock, m.Notifications[0].Message)
	assert.NotEmpty(t, m.Notifications[0].ID)

	require.Equal(t, http.StatusOK, do(t, http.MethodPut, base+"/cart/items/3", map[string]any{"amount": 1}, &m))
	assert.Equal(t, 1, m.Cart.Items[0].Quantity)
	assert.Empty(t, m.Notifications)

	require.Equal(t, http.StatusOK, do(t, http.MethodPut, base+"/cart/items/3", map[string]any{"amount": 0}, &m))
	assert.Equal(t, 1, m.Cart.Items[0].Quantity)
	assert.Empty(t, m.Notifications)

	require.Equal(t, http.StatusOK, do(t, http.MethodDelete, base+"/cart/items/3", nil, &m))
	assert.Empty(t, m.Cart.Items)

	require.Equal(t, http.StatusOK, do(t, http.MethodDelete, base+"/cart/items/3", nil, &m))
	assert.Equal(t, []string{cart.MsgRemoveFailed}, messages(m.Notifications))
}

func TestStorefront_FailuresAreToasts(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{})
	base := s.ts.URL

	var m mutationBody
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/100", nil, &m))
	assert.Equal(t, []string{cart.MsgOutOfStock}, messages(m.Notifications))

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/999", nil, &m))
	assert.Equal(t, []string{cart.MsgAddFailed}, messages(m.Notifications))

	require.Equal(t, http.StatusOK, do(t, http.MethodPut, base+"/cart/items/1", map[string]any{"amount": 2}, &m))
	assert.Equal(t, []string{cart.MsgUpdateFailed}, messages(m.Notifications))
	assert.Empty(t, m.Cart.Items)
}

func TestStorefront_BadRequests(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{})
	base := s.ts.URL

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, base+"/cart/items/abc", nil, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPut, base+"/cart/items/1", map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPut, base+"/cart/items/1", map[string]any{"qty": 1}, nil))
}

func TestStorefront_ProductsCarryCartQuantity(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{})
	base := s.ts.URL

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/2", nil, nil))
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/2", nil, nil))

	var products []struct {
		ID     int64 `json:"id"`
		InCart int   `json:"in_cart"`
	}
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/products", nil, &products))

	byID := map[int64]int{}
	for _, p := range products {
		byID[p.ID] = p.InCart
	}
	assert.Equal(t, 2, byID[2])
	assert.Equal(t, 0, byID[1])

	var q map[string]int
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/cart/quantities", nil, &q))
	assert.Equal(t, map[string]int{"2": 2}, q)
}

func TestStorefront_PersistsToStore(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{})

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, s.ts.URL+"/cart/items/1", nil, nil))

	payload, ok, err := s.store.Get(context.Background(), cart.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := cart.Decode(payload)
	require.NoError(t, err)
	it, ok := stored.Item(1)
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)

	var c cartBody
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, s.ts.URL+"/cart", nil, &c))
	require.Len(t, c.Items, 1)
}

func TestStorefront_RateLimitsMutations(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{MutationsPerMin: 2})
	base := s.ts.URL

	assert.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/6", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/cart/items/6", nil, nil))
	assert.Equal(t, http.StatusTooManyRequests, do(t, http.MethodPost, base+"/cart/items/6", nil, nil))

	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/cart", nil, nil), "reads are not limited")
}

func TestStorefront_HealthAndMetrics(t *testing.T) {
	s := newStack(t, storefront.HTTPDeps{
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   "tok",
	})

	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, s.ts.URL+"/healthz", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, s.ts.URL+"/readyz", nil, nil))
	assert.Equal(t, http.StatusForbidden, do(t, http.MethodGet, s.ts.URL+"/metrics", nil, nil))
}
