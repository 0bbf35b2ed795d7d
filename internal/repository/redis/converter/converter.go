package converter

import (
	"github.com/skladtech/inventory-backend/internal/usecase"
)

// ProductInfoConverter преобразует DTO товара между usecase и Redis-моделью.
type ProductInfoConverter interface {
	ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel
	ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo
}

type ProductInfoConverterImpl struct{}

func NewProductInfoConverterImpl() *ProductInfoConverterImpl {
	return &ProductInfoConverterImpl{}
}

func (c *ProductInfoConverterImpl) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Quantity:    entity.Quantity,
		Price:       entity.Price,
		Description: entity.Description,
	}
}

func (c *ProductInfoConverterImpl) ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo {
	return &usecase.ProductInfo{
		ID:          model.ID,
		Name:        model.Name,
		Quantity:    model.Quantity,
		Price:       model.Price,
		Description: model.Description,
	}
}
