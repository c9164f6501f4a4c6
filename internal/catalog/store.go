package catalog

import "context"

type Product struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Image      string `json:"image"`
}

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Stock(ctx context.Context, id int64) (Stock, bool, error)
}
