package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	stock    map[int64]int
}

// NewMemStore returns a store seeded with a small shoe catalog.
func NewMemStore() *MemStore {
	s := &MemStore{
		products: map[int64]Product{},
		stock:    map[int64]int{},
	}
	seed := []struct {
		p     Product
		stock int
	}{
		{Product{ID: 1, Title: "Lightweight Walking Sneaker", PriceCents: 17990, Image: "https://cdn.minicart.dev/img/1.jpg"}, 3},
		{Product{ID: 2, Title: "Leather Detail Walking Shoe", PriceCents: 13990, Image: "https://cdn.minicart.dev/img/2.jpg"}, 5},
		{Product{ID: 3, Title: "Duramo Lite 2.0 Running Shoe", PriceCents: 21990, Image: "https://cdn.minicart.dev/img/3.jpg"}, 2},
		{Product{ID: 4, Title: "Canvas Low-Top Sneaker", PriceCents: 13990, Image: "https://cdn.minicart.dev/img/4.jpg"}, 1},
		{Product{ID: 5, Title: "Trail Runner GTX", PriceCents: 13990, Image: "https://cdn.minicart.dev/img/5.jpg"}, 5},
		{Product{ID: 6, Title: "Court Classic Sneaker", PriceCents: 21990, Image: "https://cdn.minicart.dev/img/6.jpg"}, 10},
	}
	for _, it := range seed {
		s.Put(it.p, it.stock)
	}
	return s
}

// Put inserts or replaces a product and its stock.
func (s *MemStore) Put(p Product, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.stock[p.ID] = stock
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) Stock(ctx context.Context, id int64) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.stock[id]
	if !ok {
		return Stock{}, false, nil
	}
	return Stock{ID: id, Amount: n}, true, nil
}
