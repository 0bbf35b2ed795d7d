package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

// LabelUseCase генерирует и выдаёт сканируемые этикетки товаров.
// Генерация идемпотентна: повторный запрос для того же товара
// перезаписывает прежний артефакт по тому же ключу.
type LabelUseCase struct {
	productRepo ProductRepository
	labelsInfra LabelsInfra
	logger      logger.Logger
}

func NewLabelUC(productRepo ProductRepository, labelsInfra LabelsInfra, logger logger.Logger) *LabelUseCase {
	return &LabelUseCase{
		productRepo: productRepo,
		labelsInfra: labelsInfra,
		logger:      logger,
	}
}

// GenerateLabel создаёт этикетку для товара и сохраняет её в хранилище артефактов.
func (l *LabelUseCase) GenerateLabel(ctx context.Context, productID int64) (*LabelRes, error) {
	const op = "LabelUseCase.GenerateLabel"

	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	key, err := l.labelsInfra.Store(ctx, product.ID, EncodeLabelPayload(product))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &LabelRes{ProductID: product.ID, ObjectKey: key}, nil
}

// GetLabel возвращает ранее сгенерированную этикетку товара.
func (l *LabelUseCase) GetLabel(ctx context.Context, productID int64) (*LabelContent, error) {
	const op = "LabelUseCase.GetLabel"

	content, err := l.labelsInfra.Fetch(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return content, nil
}

// EncodeLabelPayload кодирует ключевые поля товара в полезную нагрузку этикетки.
// Формат стабилен и детерминирован: "<id>, <имя>, <цена>, <описание>",
// цена — с двумя знаками после запятой. Этот же формат разбирается обратно
// при обработке файлов движения товаров.
func EncodeLabelPayload(p *domain.Product) string {
	price := decimal.New(p.Price, -2).StringFixed(2)
	return fmt.Sprintf("%d, %s, %s, %s", p.ID, p.Name, price, p.Description)
}
