package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

// StockUseCase реализует движение товара: приход, расход и поиск.
// Каждое изменение остатка — одна транзакция: чтение, проверка и запись
// не перемежаются с другими операциями над той же записью.
type StockUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewStockUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// movementPayload — JSON-представление события движения товара для Kafka.
type movementPayload struct {
	ProductID     int64  `json:"product_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	QuantityAfter int64  `json:"quantity_after"`
	OccurredAt    int64  `json:"occurred_at"`
}

// AddStock увеличивает остаток товара на положительную величину.
func (s *StockUseCase) AddStock(ctx context.Context, req *StockAdjustmentReq) (*ProductInfo, error) {
	const op = "StockUseCase.AddStock"

	if req.Amount <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidAmount)
	}

	info, err := s.adjust(ctx, req.ProductID, req.Amount, domain.MovementIncoming)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return info, nil
}

// RemoveStock уменьшает остаток товара. Списание либо выполняется целиком,
// либо отклоняется с e.ErrInsufficientStock, оставляя остаток без изменений.
func (s *StockUseCase) RemoveStock(ctx context.Context, req *StockAdjustmentReq) (*ProductInfo, error) {
	const op = "StockUseCase.RemoveStock"

	if req.Amount <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidAmount)
	}

	info, err := s.adjust(ctx, req.ProductID, -req.Amount, domain.MovementOutgoing)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return info, nil
}

// adjust атомарно применяет delta к остатку и в той же транзакции
// регистрирует событие движения для публикации в Kafka.
func (s *StockUseCase) adjust(ctx context.Context, productID, delta int64, kind domain.MovementKind) (*ProductInfo, error) {
	amount := delta
	if amount < 0 {
		amount = -amount
	}

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	product, err := s.productRepo.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	movement := domain.NewStockMovement(productID, kind, amount, product.Quantity)
	payload, err := json.Marshal(movementPayload{
		ProductID:     movement.ProductID,
		Kind:          string(movement.Kind),
		Amount:        movement.Amount,
		QuantityAfter: movement.QuantityAfter,
		OccurredAt:    movement.OccurredAt.UnixNano(),
	})
	if err != nil {
		return nil, err
	}

	if _, err = s.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), string(kind), productID, payload)); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := s.cacheRepo.DeleteProducts(ctx, []int64{productID}); err != nil {
		s.logger.Warnf("failed to invalidate product cache: %v", err)
	}

	return NewProductInfo(product), nil
}

// Search разрешает поисковый запрос в двух режимах: числовой термин трактуется
// как идентификатор, любой другой — как подстрока имени. Товар с чисто цифровым
// именем через этот путь по имени не находится; это осознанная политика.
func (s *StockUseCase) Search(ctx context.Context, term string) ([]ProductInfo, error) {
	const op = "StockUseCase.Search"

	term = strings.TrimSpace(term)

	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		product, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, e.ErrProductNotFound) {
				return []ProductInfo{}, nil
			}
			return nil, e.Wrap(op, err)
		}
		return []ProductInfo{*NewProductInfo(product)}, nil
	}

	products, err := s.productRepo.SearchByName(ctx, term)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return toProductInfos(products), nil
}

// ProcessIncomingGoods применяет файл прихода: остаток известных товаров
// увеличивается, неизвестные товары заводятся из данных этикетки.
func (s *StockUseCase) ProcessIncomingGoods(ctx context.Context, req *GoodsBatchReq) (*GoodsBatchRes, error) {
	const op = "StockUseCase.ProcessIncomingGoods"

	res := &GoodsBatchRes{BatchID: uuid.NewString()}

	for _, row := range req.Rows {
		_, err := s.AddStock(ctx, NewStockAdjustmentReq(row.ProductID, row.Quantity))
		if err != nil && errors.Is(err, e.ErrProductNotFound) {
			err = s.createFromRow(ctx, row)
		}
		if err != nil {
			s.logger.Warnf("%s: line %d (product %d): %v", op, row.Line, row.ProductID, err)
			res.Failures = append(res.Failures, GoodsRowFailure{Line: row.Line, ProductID: row.ProductID, Reason: rootCause(err)})
			continue
		}

		res.Processed++
	}

	return res, nil
}

// ProcessOutgoingGoods применяет файл расхода. Строка, запрашивающая больше,
// чем есть на складе, отклоняется целиком — остаток никогда не срезается до нуля.
func (s *StockUseCase) ProcessOutgoingGoods(ctx context.Context, req *GoodsBatchReq) (*GoodsBatchRes, error) {
	const op = "StockUseCase.ProcessOutgoingGoods"

	res := &GoodsBatchRes{BatchID: uuid.NewString()}

	for _, row := range req.Rows {
		if _, err := s.RemoveStock(ctx, NewStockAdjustmentReq(row.ProductID, row.Quantity)); err != nil {
			s.logger.Warnf("%s: line %d (product %d): %v", op, row.Line, row.ProductID, err)
			res.Failures = append(res.Failures, GoodsRowFailure{Line: row.Line, ProductID: row.ProductID, Reason: rootCause(err)})
			continue
		}

		res.Processed++
	}

	return res, nil
}

// createFromRow заводит новый товар из строки прихода в собственной транзакции.
func (s *StockUseCase) createFromRow(ctx context.Context, row GoodsRow) error {
	if err := validateProductFields(row.Name, row.Quantity, row.Price); err != nil {
		return err
	}

	var err error
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, s.dbPool)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if _, err = s.productRepo.Create(ctx, domain.NewProduct(row.ProductID, strings.TrimSpace(row.Name), row.Quantity, row.Price, row.Description)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// rootCause приводит ошибку строки к известному типу отказа для отчёта о партии.
func rootCause(err error) string {
	known := []error{
		e.ErrProductNotFound,
		e.ErrInsufficientStock,
		e.ErrInvalidAmount,
		e.ErrProductNameRequired,
		e.ErrNegativeQuantity,
		e.ErrInvalidPrice,
		e.ErrDuplicateProductID,
	}
	for _, sentinel := range known {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}
