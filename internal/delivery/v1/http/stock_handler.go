package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

type StockHandler struct {
	stockUsecase usecase.StockUC
	logger       logger.Logger
}

func NewStockHandler(stockUsecase usecase.StockUC, logger logger.Logger) *StockHandler {
	return &StockHandler{stockUsecase: stockUsecase, logger: logger}
}

type StockAdjustmentRequest struct {
	Amount int64 `json:"amount"`
}

func (s *StockHandler) addStock(w http.ResponseWriter, r *http.Request) {
	s.adjust(w, r, s.stockUsecase.AddStock)
}

func (s *StockHandler) removeStock(w http.ResponseWriter, r *http.Request) {
	s.adjust(w, r, s.stockUsecase.RemoveStock)
}

func (s *StockHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, req *usecase.StockAdjustmentReq) (*usecase.ProductInfo, error),
) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	info, err := op(r.Context(), usecase.NewStockAdjustmentReq(id, req.Amount))
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponse(info))
}

// searchProducts — поиск в два режима: числовой запрос трактуется как
// идентификатор, любой другой — как подстрока названия.
func (s *StockHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")

	infos, err := s.stockUsecase.Search(r.Context(), term)
	if err != nil {
		s.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewProductResponses(infos))
}
