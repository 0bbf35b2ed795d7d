package usecase

import "context"

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*ProductInfo, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	ListProducts(ctx context.Context) ([]ProductInfo, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
	FindProductsByName(ctx context.Context, term string) ([]ProductInfo, error)
}

type StockUC interface {
	AddStock(ctx context.Context, req *StockAdjustmentReq) (*ProductInfo, error)
	RemoveStock(ctx context.Context, req *StockAdjustmentReq) (*ProductInfo, error)
	Search(ctx context.Context, term string) ([]ProductInfo, error)
	ProcessIncomingGoods(ctx context.Context, req *GoodsBatchReq) (*GoodsBatchRes, error)
	ProcessOutgoingGoods(ctx context.Context, req *GoodsBatchReq) (*GoodsBatchRes, error)
}

type LabelUC interface {
	GenerateLabel(ctx context.Context, productID int64) (*LabelRes, error)
	GetLabel(ctx context.Context, productID int64) (*LabelContent, error)
}
