package models

// StockResult is the outcome of applying one order line to inventory.
type StockResult int

const (
	StockApplied StockResult = iota
	// StockDuplicate means this (order, product) pair was already applied
	// by an earlier delivery of the same event.
	StockDuplicate
	// StockInsufficient is a business rejection: the decrement would have
	// driven stock below zero. Never retried.
	StockInsufficient
	StockProductMissing
)

func (s StockResult) String() string {
	switch s {
	case StockApplied:
		return "applied"
	case StockDuplicate:
		return "duplicate"
	case StockInsufficient:
		return "insufficient stock"
	case StockProductMissing:
		return "unknown product"
	default:
		return "unknown result"
	}
}
