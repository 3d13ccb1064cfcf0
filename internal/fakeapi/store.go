package fakeapi

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Common errors returned by the store
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidAmount   = errors.New("stock amount must not be negative")
)

// Seed is the document the fake API starts from.
type Seed struct {
	Products []domain.Product `json:"products"`
	Stock    []domain.Stock   `json:"stock"`
}

// LoadSeed reads a seed document from a JSON file
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// Store implements an in-memory catalog with stock levels
type Store struct {
	mu       sync.RWMutex
	products map[int64]domain.Product // productID -> product
	stocks   map[int64]int            // productID -> available amount
}

// NewStore creates a store filled from seed
func NewStore(seed Seed) *Store {
	s := &Store{
		products: make(map[int64]domain.Product, len(seed.Products)),
		stocks:   make(map[int64]int, len(seed.Stock)),
	}
	for _, p := range seed.Products {
		s.products[p.ID] = p
	}
	for _, st := range seed.Stock {
		s.stocks[st.ID] = st.Amount
	}
	return s
}

// Products returns all products ordered by id
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) Product(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Stock returns the stock level. Products without a stock entry are not found.
func (s *Store) Stock(id int64) (domain.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.stocks[id]
	if !ok {
		return domain.Stock{}, ErrProductNotFound
	}
	return domain.Stock{ID: id, Amount: amount}, nil
}

// SetStock sets the stock level for a known product
func (s *Store) SetStock(id int64, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	s.stocks[id] = amount
	return nil
}
