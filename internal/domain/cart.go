package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// CartItem is a line item: cached product metadata plus the requested amount.
type CartItem struct {
	Product
	Amount int `json:"amount"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Amount)))
}

// Cart is ordered by insertion. Methods never modify the receiver.
type Cart []CartItem

func (c Cart) Find(productID int64) (CartItem, bool) {
	for _, item := range c {
		if item.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Clone always returns a non-nil slice so an empty cart encodes as [].
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Append(item CartItem) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, item)
}

func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// WithAmount replaces the amount of the matching item in place, keeping its position.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	out := c.Clone()
	for i := range out {
		if out[i].ID == productID {
			out[i].Amount = amount
		}
	}
	return out
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}
