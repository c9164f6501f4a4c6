package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MiniCart/internal/cart"
)

var (
	ErrNotFound         = errors.New("inventory: not found")
	ErrBadStatus        = errors.New("inventory: bad status")
	ErrUnavailable      = errors.New("inventory: unavailable")
	ErrMalformedProduct = fmt.Errorf("inventory: malformed product: %w", cart.ErrInvalidProduct)
)

const defaultTimeout = 3 * time.Second

// Client talks to the inventory service. It is both the cart's StockOracle and
// its CatalogSource. Every lookup is a single attempt.
type Client struct {
	BaseURL string
	Client  *http.Client
}

var (
	_ cart.StockOracle   = (*Client)(nil)
	_ cart.CatalogSource = (*Client)(nil)
)

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

type stockDTO struct {
	ID     cart.ProductID `json:"id"`
	Amount *int           `json:"amount"`
}

func (c *Client) Stock(ctx context.Context, id cart.ProductID) (int, error) {
	var s stockDTO
	if err := c.getJSON(ctx, "/stock/"+formatID(id), &s); err != nil {
		return 0, err
	}
	if s.Amount == nil {
		return 0, fmt.Errorf("%w: stock %d without amount", ErrBadStatus, id)
	}
	return *s.Amount, nil
}

// productDTO uses pointers so absent fields are distinguishable from zero
// values.
type productDTO struct {
	ID         *cart.ProductID `json:"id"`
	Title      *string         `json:"title"`
	PriceCents *int64          `json:"price_cents"`
	Image      *string         `json:"image"`
}

func (d productDTO) toProduct() (cart.Product, error) {
	if d.ID == nil || d.Title == nil || d.PriceCents == nil || d.Image == nil {
		return cart.Product{}, ErrMalformedProduct
	}
	return cart.Product{
		ID:         *d.ID,
		Title:      *d.Title,
		PriceCents: *d.PriceCents,
		Image:      *d.Image,
	}, nil
}

func (c *Client) Product(ctx context.Context, id cart.ProductID) (cart.Product, error) {
	var d productDTO
	if err := c.getJSON(ctx, "/products/"+formatID(id), &d); err != nil {
		return cart.Product{}, err
	}
	return d.toProduct()
}

// ListProducts returns the catalog sorted by id. Malformed entries are skipped.
func (c *Client) ListProducts(ctx context.Context) ([]cart.Product, error) {
	var ds []productDTO
	if err := c.getJSON(ctx, "/products", &ds); err != nil {
		return nil, err
	}

	out := make([]cart.Product, 0, len(ds))
	for _, d := range ds {
		p, err := d.toProduct()
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadStatus, path, err)
	}
	return nil
}

func formatID(id cart.ProductID) string {
	return strconv.FormatInt(int64(id), 10)
}
