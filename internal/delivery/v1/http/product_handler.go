package http

import (
	"encoding/json"
	"net/http"

	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// ProductRequest — тело запроса на создание и обновление товара.
// Цена принимается строкой: допускаются оба десятичных разделителя.
type ProductRequest struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		p.logger.Warnf("%d %s: price=%q", http.StatusBadRequest, err.Error(), req.Price)
		WriteError(w, err)
		return
	}

	if req.ID < 0 {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	info, err := p.productUsecase.CreateProduct(r.Context(),
		usecase.NewCreateProductReq(req.ID, req.Name, req.Quantity, priceCents, req.Description))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewProductResponse(info))
}

func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(info))
}

// listProducts возвращает весь каталог либо, при наличии ?q=, товары
// с подстрокой в названии без учёта регистра.
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		infos []usecase.ProductInfo
		err   error
	)

	if q := r.URL.Query().Get("q"); q != "" {
		infos, err = p.productUsecase.FindProductsByName(r.Context(), q)
	} else {
		infos, err = p.productUsecase.ListProducts(r.Context())
	}
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponses(infos))
}

func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := p.productUsecase.UpdateProduct(r.Context(),
		usecase.NewUpdateProductReq(id, req.Name, req.Quantity, priceCents, req.Description))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(info))
}

func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"Deleted": true,
	})
}
