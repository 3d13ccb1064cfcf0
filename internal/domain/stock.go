package domain

// Stock is the available quantity reported by the stock service at query time.
// It is a snapshot, nothing is reserved.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Allows reports whether amount fits the available stock.
func (s Stock) Allows(amount int) bool {
	return amount <= s.Amount
}
