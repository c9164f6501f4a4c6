package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Messages delivered through the Notifier. Stock rejections use their own
// message so the shopper can tell them apart from technical failures.
const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAddFailed    = "Could not add product"
	MsgRemoveFailed = "Could not remove product"
	MsgUpdateFailed = "Could not change product quantity"
)

const (
	DefaultKey = "minicart:cart"

	persistTimeout = 3 * time.Second
)

var errNotInCart = errors.New("product not in cart")

type Config struct {
	Stock   StockOracle
	Catalog CatalogSource
	Store   DurableStore
	Notify  Notifier

	// Key is the Durable Store key holding the cart payload.
	Key string

	Log     *zap.Logger
	Metrics *Metrics
}

// Engine owns the authoritative cart snapshot. Add, Remove and SetQuantity
// never return errors: failures are reported through the Notifier and leave the
// snapshot untouched.
//
// Collaborator calls happen without holding mu; each operation re-reads the
// current snapshot under mu right before it commits, so concurrent operations
// never overwrite each other.
type Engine struct {
	stock   StockOracle
	catalog CatalogSource
	store   DurableStore
	notify  Notifier
	key     string
	log     *zap.Logger
	metrics *Metrics

	mu        sync.Mutex
	cart      *Cart
	persisted *Cart
}

func New(ctx context.Context, cfg Config) (*Engine, error) {
	switch {
	case cfg.Stock == nil:
		return nil, errors.New("cart: nil StockOracle")
	case cfg.Catalog == nil:
		return nil, errors.New("cart: nil CatalogSource")
	case cfg.Store == nil:
		return nil, errors.New("cart: nil DurableStore")
	case cfg.Notify == nil:
		return nil, errors.New("cart: nil Notifier")
	}

	e := &Engine{
		stock:   cfg.Stock,
		catalog: cfg.Catalog,
		store:   cfg.Store,
		notify:  cfg.Notify,
		key:     cfg.Key,
		log:     cfg.Log,
		metrics: cfg.Metrics,
	}
	if e.key == "" {
		e.key = DefaultKey
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}

	loaded := e.load(ctx)
	e.cart = loaded
	e.persisted = loaded
	e.metrics.setLines(loaded.Len())

	return e, nil
}

// Snapshot returns the current cart. The returned value is never modified.
func (e *Engine) Snapshot() *Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart
}

func (e *Engine) Add(ctx context.Context, id ProductID) {
	stock, err := e.stock.Stock(ctx, id)
	if err != nil {
		e.fail(ctx, opAdd, id, MsgAddFailed, outcomeUpstream, err)
		return
	}

	var product *Product
	for {
		e.mu.Lock()
		cur := e.cart
		i := cur.index(id)

		desired := 1
		if i >= 0 {
			desired = cur.items[i].Quantity + 1
		}
		if desired > stock {
			e.mu.Unlock()
			e.outOfStock(ctx, opAdd, id, desired, stock)
			return
		}

		switch {
		case i >= 0:
			e.commitLocked(ctx, cur.withQuantity(i, desired))
		case product != nil:
			e.commitLocked(ctx, cur.withAppended(LineItem{
				ID:         product.ID,
				Title:      product.Title,
				PriceCents: product.PriceCents,
				Image:      product.Image,
				Quantity:   1,
			}))
		default:
			// Not in the cart: fetch display attributes outside the lock and
			// re-evaluate against whatever snapshot is current afterwards.
			e.mu.Unlock()

			p, err := e.fetchProduct(ctx, id)
			if err != nil {
				outcome := outcomeUpstream
				if errors.Is(err, ErrInvalidProduct) {
					outcome = outcomeInvalid
				}
				e.fail(ctx, opAdd, id, MsgAddFailed, outcome, err)
				return
			}
			product = &p
			continue
		}

		e.mu.Unlock()
		e.metrics.observe(opAdd, outcomeOK)
		return
	}
}

func (e *Engine) Remove(ctx context.Context, id ProductID) {
	e.mu.Lock()
	cur := e.cart
	i := cur.index(id)
	if i < 0 {
		e.mu.Unlock()
		e.fail(ctx, opRemove, id, MsgRemoveFailed, outcomeNotInCart, errNotInCart)
		return
	}
	e.commitLocked(ctx, cur.without(i))
	e.mu.Unlock()

	e.metrics.observe(opRemove, outcomeOK)
}

// SetQuantity sets the quantity of a line item already in the cart. Amounts
// below one are ignored without notification; use Remove to drop an item.
func (e *Engine) SetQuantity(ctx context.Context, id ProductID, amount int) {
	if amount <= 0 {
		e.metrics.observe(opSetQuantity, outcomeNoop)
		return
	}

	stock, err := e.stock.Stock(ctx, id)
	if err != nil {
		e.fail(ctx, opSetQuantity, id, MsgUpdateFailed, outcomeUpstream, err)
		return
	}
	if amount > stock {
		e.outOfStock(ctx, opSetQuantity, id, amount, stock)
		return
	}

	e.mu.Lock()
	cur := e.cart
	i := cur.index(id)
	if i < 0 {
		e.mu.Unlock()
		e.fail(ctx, opSetQuantity, id, MsgUpdateFailed, outcomeNotInCart, errNotInCart)
		return
	}
	e.commitLocked(ctx, cur.withQuantity(i, amount))
	e.mu.Unlock()

	e.metrics.observe(opSetQuantity, outcomeOK)
}

// Reconcile writes the current snapshot to the Durable Store if it differs
// from the last one written. It is a no-op when nothing changed, so callers
// may run it on every read.
func (e *Engine) Reconcile(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcileLocked(ctx)
}

func (e *Engine) commitLocked(ctx context.Context, next *Cart) {
	e.cart = next
	e.metrics.setLines(next.Len())
	e.reconcileLocked(ctx)
}

func (e *Engine) fetchProduct(ctx context.Context, id ProductID) (Product, error) {
	p, err := e.catalog.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := p.validateFor(id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (e *Engine) outOfStock(ctx context.Context, op string, id ProductID, want, stock int) {
	e.log.Info("cart: insufficient stock",
		zap.String("op", op),
		zap.Int64("product_id", int64(id)),
		zap.Int("requested", want),
		zap.Int("stock", stock),
	)
	e.metrics.observe(op, outcomeOutOfStock)
	e.notify.Notify(ctx, MsgOutOfStock)
}

func (e *Engine) fail(ctx context.Context, op string, id ProductID, msg, outcome string, err error) {
	e.log.Warn("cart: operation failed",
		zap.String("op", op),
		zap.Int64("product_id", int64(id)),
		zap.String("outcome", outcome),
		zap.Error(err),
	)
	e.metrics.observe(op, outcome)
	e.notify.Notify(ctx, msg)
}
