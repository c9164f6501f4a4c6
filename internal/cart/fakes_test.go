package cart

import (
	"context"
	"errors"
	"sync"
)

var errDown = errors.New("inventory down")

type fakeStock struct {
	mu     sync.Mutex
	amount map[ProductID]int
	err    error
	calls  int
	// hook runs inside Stock before it answers.
	hook func()
}

func (f *fakeStock) Stock(_ context.Context, id ProductID) (int, error) {
	f.mu.Lock()
	f.calls++
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n, ok := f.amount[id]
	if !ok {
		return 0, errors.New("stock not found")
	}
	return n, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[ProductID]Product
	err      error
	calls    int
}

func (f *fakeCatalog) Product(_ context.Context, id ProductID) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return Product{}, errors.New("product not found")
	}
	return p, nil
}

type fakeStore struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	writes  int
	history []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.writes++
	s.data[key] = value
	s.history = append(s.history, value)
	return nil
}

func (s *fakeStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(_ context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

type harness struct {
	stock   *fakeStock
	catalog *fakeCatalog
	store   *fakeStore
	notes   *recorder
}

func newHarness() *harness {
	return &harness{
		stock: &fakeStock{amount: map[ProductID]int{
			1: 5,
			2: 3,
			3: 0,
			4: 2,
		}},
		catalog: &fakeCatalog{products: map[ProductID]Product{
			1: {ID: 1, Title: "Running shoe", PriceCents: 17990, Image: "https://img.example/1.jpg"},
			2: {ID: 2, Title: "Trail shoe", PriceCents: 13990, Image: "https://img.example/2.jpg"},
			3: {ID: 3, Title: "Sandal", PriceCents: 4990, Image: "https://img.example/3.jpg"},
			4: {ID: 4, Title: "Sneaker", PriceCents: 9990, Image: "https://img.example/4.jpg"},
		}},
		store: newFakeStore(),
		notes: &recorder{},
	}
}

func (h *harness) config() Config {
	return Config{
		Stock:   h.stock,
		Catalog: h.catalog,
		Store:   h.store,
		Notify:  h.notes,
	}
}
