package usecase

import (
	"context"

	"github.com/skladtech/inventory-backend/internal/domain"
)

type ProductRepository interface {
	// Create сохраняет новый товар. ID == 0 означает автоматическое присвоение.
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// List возвращает все товары в порядке возрастания id.
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	// SearchByName ищет товары по подстроке имени без учёта регистра.
	SearchByName(ctx context.Context, term string) ([]domain.Product, error)
	// AdjustQuantity атомарно изменяет остаток на delta.
	// Возвращает e.ErrInsufficientStock, если результат был бы отрицательным.
	AdjustQuantity(ctx context.Context, id int64, delta int64) (*domain.Product, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type CacheRepository interface {
	// GetProduct возвращает (nil, nil) при промахе кэша.
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	SetProduct(ctx context.Context, info *ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type LabelRepository interface {
	Upload(ctx context.Context, label *domain.Label) (string, error)
	Download(ctx context.Context, key string) (*LabelContent, error)
	Delete(ctx context.Context, key string) error
}
