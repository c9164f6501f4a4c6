package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Encode serializes a cart as a JSON array of line items in cart order.
func Encode(c *Cart) (string, error) {
	items := c.items
	if items == nil {
		items = []LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a payload produced by Encode. Payloads that would break the
// cart invariants are rejected as a whole.
func Decode(payload string) (*Cart, error) {
	var items []LineItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	seen := make(map[ProductID]struct{}, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("decode cart: product %d has quantity %d", it.ID, it.Quantity)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("decode cart: duplicate product %d", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return newCart(items), nil
}

func (e *Engine) load(ctx context.Context) *Cart {
	payload, ok, err := e.store.Get(ctx, e.key)
	if err != nil {
		e.log.Warn("cart: load failed, starting empty", zap.String("key", e.key), zap.Error(err))
		return newCart(nil)
	}
	if !ok {
		return newCart(nil)
	}

	c, err := Decode(payload)
	if err != nil {
		e.log.Warn("cart: stored payload unreadable, starting empty", zap.String("key", e.key), zap.Error(err))
		return newCart(nil)
	}
	return c
}

// reconcileLocked writes e.cart when it differs from e.persisted. persisted
// only advances after a successful write, so a failed write is retried on the
// next commit or Reconcile call.
func (e *Engine) reconcileLocked(ctx context.Context) {
	cur := e.cart
	if cur == e.persisted {
		return
	}
	if cur.Equal(e.persisted) {
		e.persisted = cur
		return
	}

	payload, err := Encode(cur)
	if err != nil {
		e.log.Error("cart: encode failed", zap.Error(err))
		e.metrics.storeWrite(false)
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := e.store.Set(wctx, e.key, payload); err != nil {
		e.log.Warn("cart: persist failed", zap.String("key", e.key), zap.Error(err))
		e.metrics.storeWrite(false)
		return
	}

	e.persisted = cur
	e.metrics.storeWrite(true)
}
