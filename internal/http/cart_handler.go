package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartStore is the part of service.CartService the handlers drive.
type CartStore interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, req service.UpdateProductAmount) error
}

type CartHandler struct {
	store    CartStore
	notifier notify.Notifier
	currency currency.Unit
	timeout  time.Duration
	log      *slog.Logger
}

func NewCartHandler(store CartStore, notifier notify.Notifier, unit currency.Unit, timeout time.Duration, log *slog.Logger) *CartHandler {
	return &CartHandler{
		store:    store,
		notifier: notifier,
		currency: unit,
		timeout:  timeout,
		log:      log,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateAmountRequestDTO struct {
	Amount *int `json:"amount"`
}

type CartItemView struct {
	domain.CartItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items          []CartItemView  `json:"items"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id must be positive")
		return
	}

	if err := h.store.AddProduct(ctx, req.ProductID); err != nil {
		h.fail(w, r, service.OpAddProduct, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Amount == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "amount is required")
		return
	}

	err := h.store.UpdateProductAmount(ctx, service.UpdateProductAmount{ProductID: productID, Amount: *req.Amount})
	if err != nil {
		h.fail(w, r, service.OpUpdateAmount, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveProduct(ctx, productID); err != nil {
		h.fail(w, r, service.OpRemoveProduct, err)
		return
	}
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) view() CartView {
	cart := h.store.Cart()
	items := make([]CartItemView, len(cart))
	for i, item := range cart {
		items[i] = CartItemView{CartItem: item, Subtotal: item.Subtotal()}
	}
	total := cart.Total()
	return CartView{
		Items:          items,
		Total:          total,
		TotalFormatted: domain.FormatPrice(total, h.currency),
	}
}

// fail emits exactly one toast for the failed call and answers with its text.
func (h *CartHandler) fail(w http.ResponseWriter, r *http.Request, op service.Op, err error) {
	n := notify.Error(op, err)
	h.notifier.Notify(r.Context(), n)

	status, code := statusFor(err)
	h.log.Warn("cart request failed",
		"request_id", RequestIDFromContext(r.Context()),
		"op", string(n.Op),
		"status", status,
		"error", err,
	)
	respondError(w, status, code, n.Message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "invalid_quantity"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, service.ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
