package usecase

import (
	"context"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

// ProductUseCase реализует бизнес-логику ведения справочника товаров.
// Репозиторий владеет единственной авторитетной копией записи; наружу
// отдаются только DTO-копии.
type ProductUseCase struct {
	productRepo ProductRepository
	dbPool      transaction.Transactional
	cacheRepo   CacheRepository
	labelsInfra LabelsInfra
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	labelsInfra LabelsInfra,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		dbPool:      dbPool,
		cacheRepo:   cacheRepo,
		labelsInfra: labelsInfra,
		logger:      logger,
	}
}

// CreateProduct добавляет новый товар. Валидация выполняется до любой записи:
// отклонённый запрос не оставляет следов в хранилище.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := validateProductFields(req.Name, req.Quantity, req.Price); err != nil {
		return nil, e.Wrap(op, err)
	}
	if req.ID < 0 {
		return nil, e.Wrap(op, e.ErrInvalidProductID)
	}

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product, err := p.productRepo.Create(ctx, domain.NewProduct(req.ID, strings.TrimSpace(req.Name), req.Quantity, req.Price, req.Description))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateCache(ctx, product.ID)

	return NewProductInfo(product), nil
}

// GetProduct возвращает товар по идентификатору, сначала заглядывая в кэш.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	cached, err := p.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		p.logger.Warnf("cache lookup failed: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product)

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := p.cacheRepo.SetProduct(bgCtx, info); err != nil {
			p.logger.Warnf("failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return info, nil
}

// ListProducts возвращает все товары в порядке возрастания id.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return toProductInfos(products), nil
}

// UpdateProduct полностью заменяет изменяемые поля товара.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := validateProductFields(req.Name, req.Quantity, req.Price); err != nil {
		return nil, e.Wrap(op, err)
	}

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product, err := p.productRepo.Update(ctx, domain.NewProduct(req.ID, strings.TrimSpace(req.Name), req.Quantity, req.Price, req.Description))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidateCache(ctx, product.ID)

	return NewProductInfo(product), nil
}

// DeleteProduct безвозвратно удаляет товар и запускает фоновую очистку его этикетки.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if err = p.productRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	p.invalidateCache(ctx, id)
	p.labelsInfra.CleanupLabel(id)

	return nil
}

// FindProductsByName ищет товары по подстроке имени без учёта регистра.
// Пустой результат не является ошибкой.
func (p *ProductUseCase) FindProductsByName(ctx context.Context, term string) ([]ProductInfo, error) {
	const op = "ProductUseCase.FindProductsByName"

	products, err := p.productRepo.SearchByName(ctx, term)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return toProductInfos(products), nil
}

// invalidateCache удаляет устаревшие данные товара из кэша, логируя отказ.
func (p *ProductUseCase) invalidateCache(ctx context.Context, id int64) {
	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("failed to invalidate product cache: %v", err)
	}
}

// validateProductFields проверяет корректность полей товара до обращения к хранилищу.
func validateProductFields(name string, quantity, price int64) error {
	if strings.TrimSpace(name) == "" {
		return e.ErrProductNameRequired
	}

	if quantity < 0 {
		return e.ErrNegativeQuantity
	}

	if price < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}

func toProductInfos(products []domain.Product) []ProductInfo {
	result := make([]ProductInfo, 0, len(products))
	for i := range products {
		result = append(result, *NewProductInfo(&products[i]))
	}

	return result
}
