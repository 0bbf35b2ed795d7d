package usecase

import (
	"time"

	"github.com/skladtech/inventory-backend/internal/domain"
)

// PRODUCT USECASE

// CreateProductReq — запрос на добавление нового товара.
// ID == 0 означает автоматическое присвоение идентификатора.
type CreateProductReq struct {
	ID          int64
	Name        string
	Quantity    int64
	Price       int64 // в минорных единицах
	Description string
}

func NewCreateProductReq(id int64, name string, quantity, price int64, description string) *CreateProductReq {
	return &CreateProductReq{
		ID:          id,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		Description: description,
	}
}

// UpdateProductReq — запрос на полную замену изменяемых полей товара.
type UpdateProductReq struct {
	ID          int64
	Name        string
	Quantity    int64
	Price       int64
	Description string
}

func NewUpdateProductReq(id int64, name string, quantity, price int64, description string) *UpdateProductReq {
	return &UpdateProductReq{
		ID:          id,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		Description: description,
	}
}

// ProductInfo — DTO с информацией о товаре для внешнего использования.
type ProductInfo struct {
	ID          int64
	Name        string
	Quantity    int64
	Price       int64
	Description string
}

func NewProductInfo(p *domain.Product) *ProductInfo {
	return &ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Description: p.Description,
	}
}

// STOCK USECASE

// StockAdjustmentReq — запрос на изменение остатка товара.
type StockAdjustmentReq struct {
	ProductID int64
	Amount    int64
}

func NewStockAdjustmentReq(productID, amount int64) *StockAdjustmentReq {
	return &StockAdjustmentReq{ProductID: productID, Amount: amount}
}

// GoodsRow — одна строка файла прихода или расхода.
type GoodsRow struct {
	Line        int
	ProductID   int64
	Name        string
	Price       int64
	Description string
	Quantity    int64
}

// GoodsBatchReq — разобранный файл движения товаров.
type GoodsBatchReq struct {
	Rows []GoodsRow
}

func NewGoodsBatchReq(rows []GoodsRow) *GoodsBatchReq {
	return &GoodsBatchReq{Rows: rows}
}

// GoodsRowFailure описывает строку файла, которую не удалось применить.
type GoodsRowFailure struct {
	Line      int
	ProductID int64
	Reason    string
}

// GoodsBatchRes — результат обработки файла движения товаров.
// Каждая строка применяется независимо: отказ одной не откатывает остальные.
type GoodsBatchRes struct {
	BatchID   string
	Processed int
	Failures  []GoodsRowFailure
}

// LABEL USECASE

// LabelRes — результат генерации этикетки.
type LabelRes struct {
	ProductID int64
	ObjectKey string
}

// LabelContent — содержимое этикетки для выдачи наружу.
type LabelContent struct {
	Data        []byte
	ContentType string
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

// OutboxEvent — событие движения товара, ожидающее публикации в Kafka.
// Создаётся в той же транзакции, что и изменение остатка.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventID, eventType string, productID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: productID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{ProductID: productID, Payload: payload}
}
