package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

const DefaultStorageKey = "@RocketShoes:cart"

// Catalog is what the cart needs from the product and stock services.
// Consumers define this interface, not the REST client.
type Catalog interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
	Stock(ctx context.Context, id int64) (domain.Stock, error)
}

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// CartService owns the in-session cart and mirrors it into storage after
// every successful mutation. Mutations run one at a time: writeMu is held from
// the first read of the cart until the persisted write, network calls included.
type CartService struct {
	writeMu sync.Mutex

	mu   sync.RWMutex
	cart domain.Cart

	storage storage.Storage
	catalog Catalog
	key     string
	log     *slog.Logger
}

type options struct {
	key          string
	log          *slog.Logger
	resetCorrupt bool
}

type Option func(*options)

func WithStorageKey(key string) Option {
	return func(o *options) { o.key = key }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithResetCorrupt starts with an empty cart instead of failing when the
// persisted blob cannot be decoded. The blob stays until the next write.
func WithResetCorrupt() Option {
	return func(o *options) { o.resetCorrupt = true }
}

// NewCartService loads the persisted cart once. A missing key is an empty cart.
func NewCartService(ctx context.Context, store storage.Storage, catalog Catalog, opts ...Option) (*CartService, error) {
	o := options{key: DefaultStorageKey, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &CartService{
		storage: store,
		catalog: catalog,
		key:     o.key,
		log:     o.log.With("storage_key", o.key),
	}

	cart, err := s.load(ctx)
	if errors.Is(err, ErrCorruptCart) && o.resetCorrupt {
		s.log.Warn("persisted cart is corrupt, starting empty", "error", err)
		cart, err = domain.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}

	s.cart = cart
	s.log.Info("cart loaded", "items", len(cart))
	return s, nil
}

func (s *CartService) load(ctx context.Context) (domain.Cart, error) {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCart, err)
	}
	if err := validate(cart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCart, err)
	}
	return cart.Clone(), nil
}

func validate(cart domain.Cart) error {
	seen := make(map[int64]struct{}, len(cart))
	for _, item := range cart {
		if item.Amount <= 0 {
			return fmt.Errorf("product %d has amount %d", item.ID, item.Amount)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("product %d appears twice", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *CartService) current() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// AddProduct appends the product with amount 1, or bumps the amount of an
// item already in the cart through the stock-checked update path.
func (s *CartService) AddProduct(ctx context.Context, productID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if existing, ok := s.current().Find(productID); ok {
		return s.updateAmount(ctx, productID, existing.Amount+1)
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return s.fail(OpAddProduct, productID, upstream(err))
	}
	product.ID = productID

	next := s.current().Append(domain.CartItem{Product: product, Amount: 1})
	if err := s.commit(ctx, next); err != nil {
		return s.fail(OpAddProduct, productID, err)
	}
	s.log.Debug("product added", "product_id", productID)
	return nil
}

func (s *CartService) RemoveProduct(ctx context.Context, productID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cart := s.current()
	if _, ok := cart.Find(productID); !ok {
		return s.fail(OpRemoveProduct, productID, ErrItemNotFound)
	}

	if err := s.commit(ctx, cart.Without(productID)); err != nil {
		return s.fail(OpRemoveProduct, productID, err)
	}
	s.log.Debug("product removed", "product_id", productID)
	return nil
}

// UpdateProductAmount sets the amount of a cart item after checking live stock.
// Amounts <= 0 are rejected; they never remove the item.
func (s *CartService) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.updateAmount(ctx, req.ProductID, req.Amount)
}

// updateAmount must be called with writeMu held.
func (s *CartService) updateAmount(ctx context.Context, productID int64, amount int) error {
	stock, err := s.catalog.Stock(ctx, productID)
	if err != nil {
		return s.fail(OpUpdateAmount, productID, upstream(err))
	}

	if !stock.Allows(amount) {
		return s.fail(OpUpdateAmount, productID, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, amount, stock.Amount))
	}
	if amount <= 0 {
		return s.fail(OpUpdateAmount, productID, ErrInvalidQuantity)
	}

	// a product that is not in the cart leaves it as is
	if err := s.commit(ctx, s.current().WithAmount(productID, amount)); err != nil {
		return s.fail(OpUpdateAmount, productID, err)
	}
	s.log.Debug("product amount updated", "product_id", productID, "amount", amount)
	return nil
}

// commit persists next and only then makes it the in-memory cart.
func (s *CartService) commit(ctx context.Context, next domain.Cart) error {
	data, err := json.Marshal(next.Clone())
	if err != nil {
		return fmt.Errorf("%w: marshal cart: %w", ErrStorage, err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *CartService) fail(op Op, productID int64, err error) error {
	s.log.Warn("cart operation failed", "op", string(op), "product_id", productID, "error", err)
	return &OpError{Op: op, ProductID: productID, Err: err}
}
