package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

const maxGoodsFileSize = 10 << 20

type GoodsHandler struct {
	stockUsecase usecase.StockUC
	logger       logger.Logger
}

func NewGoodsHandler(stockUsecase usecase.StockUC, logger logger.Logger) *GoodsHandler {
	return &GoodsHandler{stockUsecase: stockUsecase, logger: logger}
}

// goodsCSVRow — строка CSV-файла движения товаров.
// CODECONTENT повторяет полезную нагрузку этикетки: "id, name, price, description".
type goodsCSVRow struct {
	CodeContent string `csv:"CODECONTENT"`
	Quantity    int64  `csv:"QUANTITY"`
}

type GoodsBatchResponse struct {
	BatchID   string                `json:"batch_id"`
	Processed int                   `json:"processed"`
	Failures  []GoodsFailureDetails `json:"failures"`
}

type GoodsFailureDetails struct {
	Line      int    `json:"line"`
	ProductID int64  `json:"product_id,omitempty"`
	Reason    string `json:"reason"`
}

func (g *GoodsHandler) incomingGoods(w http.ResponseWriter, r *http.Request) {
	g.processGoods(w, r, g.stockUsecase.ProcessIncomingGoods)
}

func (g *GoodsHandler) outgoingGoods(w http.ResponseWriter, r *http.Request) {
	g.processGoods(w, r, g.stockUsecase.ProcessOutgoingGoods)
}

func (g *GoodsHandler) processGoods(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, req *usecase.GoodsBatchReq) (*usecase.GoodsBatchRes, error),
) {
	rows, err := g.parseGoodsFile(r)
	if err != nil {
		g.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := op(r.Context(), usecase.NewGoodsBatchReq(rows))
	if err != nil {
		g.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toGoodsBatchResponse(res))
}

func (g *GoodsHandler) parseGoodsFile(r *http.Request) ([]usecase.GoodsRow, error) {
	const op = "GoodsHandler.parseGoodsFile"

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		return nil, e.Wrap(op, e.ErrExpectedCSV)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxGoodsFileSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, e.Wrap(op, e.ErrStatusBadRequest)
	}

	var csvRows []*goodsCSVRow
	if err := gocsv.UnmarshalBytes(data, &csvRows); err != nil {
		return nil, e.Wrap(op, e.ErrExpectedCSV)
	}

	rows := make([]usecase.GoodsRow, 0, len(csvRows))
	for i, csvRow := range csvRows {
		// Нумерация строк файла с единицы, заголовок — строка 1.
		line := i + 2

		row, err := parseCodeContent(csvRow.CodeContent)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		row.Line = line
		row.Quantity = csvRow.Quantity

		rows = append(rows, *row)
	}

	return rows, nil
}

// parseCodeContent разбирает полезную нагрузку этикетки "id, name, price, description".
// Описание может содержать запятые, поэтому строка делится не более чем на четыре части.
func parseCodeContent(s string) (*usecase.GoodsRow, error) {
	parts := strings.SplitN(s, ",", 4)
	if len(parts) < 4 {
		return nil, e.ErrInvalidCodeContent
	}

	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || id <= 0 {
		return nil, e.ErrInvalidCodeContent
	}

	price, err := parsePriceToCents(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, e.ErrInvalidCodeContent
	}

	return &usecase.GoodsRow{
		ProductID:   id,
		Name:        strings.TrimSpace(parts[1]),
		Price:       price,
		Description: strings.TrimSpace(parts[3]),
	}, nil
}

func toGoodsBatchResponse(res *usecase.GoodsBatchRes) *GoodsBatchResponse {
	failures := make([]GoodsFailureDetails, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, GoodsFailureDetails{
			Line:      f.Line,
			ProductID: f.ProductID,
			Reason:    f.Reason,
		})
	}

	return &GoodsBatchResponse{
		BatchID:   res.BatchID,
		Processed: res.Processed,
		Failures:  failures,
	}
}
