package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/pkg/kit"
)

// Toast is a user-facing message raised while serving a request.
type Toast struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type ctxKey string

const toastsKey ctxKey = "toasts"

type toastBox struct {
	mu    sync.Mutex
	items []Toast
}

func (b *toastBox) add(t Toast) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, t)
}

func (b *toastBox) list() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Toast, len(b.items))
	copy(out, b.items)
	return out
}

func withToasts(ctx context.Context) (context.Context, *toastBox) {
	b := &toastBox{}
	return context.WithValue(ctx, toastsKey, b), b
}

func toastsFrom(ctx context.Context) (*toastBox, bool) {
	b, ok := ctx.Value(toastsKey).(*toastBox)
	return b, ok
}

// ToastNotifier is the engine's notification sink for the HTTP surface. It
// attaches each message to the request that caused it and logs it.
type ToastNotifier struct {
	Log *zap.Logger
}

var _ cart.Notifier = ToastNotifier{}

func (n ToastNotifier) Notify(ctx context.Context, msg string) {
	kit.OrNop(n.Log).Info("toast", zap.String("message", msg))

	if b, ok := toastsFrom(ctx); ok {
		b.add(Toast{
			ID:      uuid.NewString(),
			Message: msg,
			At:      time.Now().UTC(),
		})
	}
}
