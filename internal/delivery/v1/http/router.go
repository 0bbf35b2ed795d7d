package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(prUC usecase.ProductUC, stUC usecase.StockUC, lbUC usecase.LabelUC) {
	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(prUC, r.logger)
		stHandler := NewStockHandler(stUC, r.logger)
		lbHandler := NewLabelHandler(lbUC, r.logger)
		gdHandler := NewGoodsHandler(stUC, r.logger)

		registerProductRoutes(v1, prHandler, stHandler, lbHandler)
		registerGoodsRoutes(v1, gdHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, stHandler *StockHandler, lbHandler *LabelHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.createProduct)
		pr.Get("/", prHandler.listProducts)
		pr.Get("/search", stHandler.searchProducts)

		pr.Route("/{id}", func(item chi.Router) {
			item.Get("/", prHandler.getProduct)
			item.Put("/", prHandler.updateProduct)
			item.Delete("/", prHandler.deleteProduct)

			item.Post("/stock/add", stHandler.addStock)
			item.Post("/stock/remove", stHandler.removeStock)

			item.Post("/label", lbHandler.generateLabel)
			item.Get("/label", lbHandler.getLabel)
		})
	})
}

func registerGoodsRoutes(router chi.Router, gdHandler *GoodsHandler) {
	router.Route("/goods", func(gd chi.Router) {
		gd.Post("/incoming", gdHandler.incomingGoods)
		gd.Post("/outgoing", gdHandler.outgoingGoods)
	})
}
