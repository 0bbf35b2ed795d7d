package domain

import "time"

// MovementKind — вид движения товара.
type MovementKind string

const (
	MovementIncoming MovementKind = "stock.received" // приход
	MovementOutgoing MovementKind = "stock.shipped"  // расход
)

// StockMovement описывает применённое изменение остатка товара.
type StockMovement struct {
	ProductID     int64
	Kind          MovementKind
	Amount        int64
	QuantityAfter int64
	OccurredAt    time.Time
}

func NewStockMovement(productID int64, kind MovementKind, amount, quantityAfter int64) *StockMovement {
	return &StockMovement{
		ProductID:     productID,
		Kind:          kind,
		Amount:        amount,
		QuantityAfter: quantityAfter,
		OccurredAt:    time.Now().UTC(),
	}
}
