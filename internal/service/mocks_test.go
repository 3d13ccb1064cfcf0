package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockCatalog struct {
	m        sync.RWMutex
	products map[int64]domain.Product
	stocks   map[int64]int

	productErr error
	stockErr   error

	productCalls int
	stockCalls   int

	// when set, Stock signals stockEntered and waits for stockGate to close
	stockGate    chan struct{}
	stockEntered chan struct{}
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		products: make(map[int64]domain.Product),
		stocks:   make(map[int64]int),
	}
}

func (m *mockCatalog) withProduct(p domain.Product, stock int) *mockCatalog {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[p.ID] = p
	m.stocks[p.ID] = stock
	return m
}

func (m *mockCatalog) setStock(id int64, amount int) {
	m.m.Lock()
	defer m.m.Unlock()
	m.stocks[id] = amount
}

func (m *mockCatalog) Product(_ context.Context, id int64) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.productCalls++
	if m.productErr != nil {
		return domain.Product{}, m.productErr
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d not found", id)
	}
	return p, nil
}

func (m *mockCatalog) Stock(ctx context.Context, id int64) (domain.Stock, error) {
	m.m.Lock()
	m.stockCalls++
	gate, entered := m.stockGate, m.stockEntered
	m.m.Unlock()

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Stock{}, ctx.Err()
		}
	}

	m.m.RLock()
	defer m.m.RUnlock()
	if m.stockErr != nil {
		return domain.Stock{}, m.stockErr
	}
	amount, ok := m.stocks[id]
	if !ok {
		return domain.Stock{}, fmt.Errorf("stock %d not found", id)
	}
	return domain.Stock{ID: id, Amount: amount}, nil
}

func (m *mockCatalog) calls() (products, stocks int) {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.productCalls, m.stockCalls
}

// mockStorage wraps the memory backend and can be told to fail.
type mockStorage struct {
	*storage.Memory

	m      sync.RWMutex
	getErr error
	setErr error
	sets   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{Memory: storage.NewMemory()}
}

func (m *mockStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.m.RLock()
	err := m.getErr
	m.m.RUnlock()
	if err != nil {
		return nil, err
	}
	return m.Memory.Get(ctx, key)
}

func (m *mockStorage) Set(ctx context.Context, key string, value []byte) error {
	m.m.Lock()
	m.sets++
	err := m.setErr
	m.m.Unlock()
	if err != nil {
		return err
	}
	return m.Memory.Set(ctx, key, value)
}

func (m *mockStorage) failSets(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.setErr = err
}

func (m *mockStorage) setCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.sets
}
