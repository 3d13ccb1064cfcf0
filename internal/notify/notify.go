// Package notify carries user-facing toasts from the cart to whatever
// presents them. Notifiers are fire-and-forget: delivery problems are logged,
// never returned.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/google/uuid"
)

type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

const (
	MsgAddFailed         = "error adding product"
	MsgRemoveFailed      = "error removing product"
	MsgUpdateFailed      = "error updating quantity"
	MsgInsufficientStock = "insufficient stock"
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	Level     Level      `json:"level"`
	Message   string     `json:"message"`
	Op        service.Op `json:"op,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Message maps a cart operation error to its fixed user-facing text.
// Out-of-stock wins over the operation; everything else is reported per operation.
func Message(op service.Op, err error) string {
	if errors.Is(err, service.ErrInsufficientStock) {
		return MsgInsufficientStock
	}

	var opErr *service.OpError
	if errors.As(err, &opErr) {
		op = opErr.Op
	}

	switch op {
	case service.OpAddProduct:
		return MsgAddFailed
	case service.OpRemoveProduct:
		return MsgRemoveFailed
	default:
		return MsgUpdateFailed
	}
}

// Error builds the error toast for a failed operation.
func Error(op service.Op, err error) Notification {
	var opErr *service.OpError
	if errors.As(err, &opErr) {
		op = opErr.Op
	}
	return Notification{
		ID:        uuid.New(),
		Level:     LevelError,
		Message:   Message(op, err),
		Op:        op,
		CreatedAt: time.Now().UTC(),
	}
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}
