package storefront

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCart/internal/cart"
	"MiniCart/pkg/kit"
)

const readyTimeout = 1 * time.Second

type ProductLister interface {
	ListProducts(ctx context.Context) ([]cart.Product, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the cart engine to the catalog and cart listings.
type Server struct {
	Cart     *cart.Engine
	Products ProductLister
	Store    Pinger
	Log      *zap.Logger
}

type lineView struct {
	cart.LineItem
	SubtotalCents int64 `json:"subtotal_cents"`
}

type cartView struct {
	Items      []lineView             `json:"items"`
	Quantities map[cart.ProductID]int `json:"quantities"`
	TotalCents int64                  `json:"total_cents"`
}

type mutationResp struct {
	Cart          cartView `json:"cart"`
	Notifications []Toast  `json:"notifications"`
}

type productView struct {
	cart.Product
	InCart int `json:"in_cart"`
}

type setQuantityReq struct {
	Amount *int `json:"amount"`
}

func (s *Server) routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/products", s.listProducts)

	r.Route("/cart", func(cr chi.Router) {
		cr.Get("/", s.getCart)
		cr.Get("/quantities", s.getQuantities)

		cr.Group(func(mr chi.Router) {
			mr.Use(limit)
			mr.Post("/items/{id}", s.addItem)
			mr.Put("/items/{id}", s.setQuantity)
			mr.Delete("/items/{id}", s.removeItem)
		})
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Products.ListProducts(r.Context())
	if err != nil {
		s.log().Warn("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "catalog unavailable", nil)
		return
	}

	inCart := s.Cart.Snapshot().Quantities()
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, InCart: inCart[p.ID]})
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.Cart.Reconcile(r.Context())
	kit.WriteJSON(w, http.StatusOK, newCartView(s.Cart.Snapshot()))
}

func (s *Server) getQuantities(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Cart.Snapshot().Quantities())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, func(ctx context.Context) { s.Cart.Add(ctx, id) })
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, func(ctx context.Context) { s.Cart.Remove(ctx, id) })
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req setQuantityReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if req.Amount == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "amount required", nil)
		return
	}

	amount := *req.Amount
	s.mutate(w, r, func(ctx context.Context) { s.Cart.SetQuantity(ctx, id, amount) })
}

// mutate runs op with a toast collector attached and answers with the cart as
// it is after op, plus any toasts op raised.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context)) {
	ctx, box := withToasts(r.Context())
	op(ctx)

	kit.WriteJSON(w, http.StatusOK, mutationResp{
		Cart:          newCartView(s.Cart.Snapshot()),
		Notifications: box.list(),
	})
}

func (s *Server) log() *zap.Logger {
	return kit.OrNop(s.Log)
}

func newCartView(c *cart.Cart) cartView {
	items := c.Items()
	lines := make([]lineView, 0, len(items))
	for _, it := range items {
		lines = append(lines, lineView{LineItem: it, SubtotalCents: it.SubtotalCents()})
	}
	return cartView{
		Items:      lines,
		Quantities: c.Quantities(),
		TotalCents: c.TotalCents(),
	}
}

func productID(w http.ResponseWriter, r *http.Request) (cart.ProductID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return 0, false
	}
	return cart.ProductID(id), true
}
