package cart

import "context"

// StockOracle reports how many units of a product are available right now.
type StockOracle interface {
	Stock(ctx context.Context, id ProductID) (int, error)
}

type CatalogSource interface {
	Product(ctx context.Context, id ProductID) (Product, error)
}

// DurableStore is a key-value store that survives restarts. Get reports a
// missing key with ok=false and a nil error.
type DurableStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Notifier delivers user-facing messages. It must not block.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

type NotifyFunc func(ctx context.Context, msg string)

func (f NotifyFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }
