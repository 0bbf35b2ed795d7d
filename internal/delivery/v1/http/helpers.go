package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/skladtech/inventory-backend/internal/usecase"
	"github.com/skladtech/inventory-backend/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ProductResponse — представление товара наружу. Цена отдаётся строкой
// с двумя знаками после точки, чтобы не терять минорные единицы в JSON-числах.
type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func NewProductResponse(info *usecase.ProductInfo) *ProductResponse {
	return &ProductResponse{
		ID:          info.ID,
		Name:        info.Name,
		Quantity:    info.Quantity,
		Price:       formatPriceFromCents(info.Price),
		Description: info.Description,
	}
}

func NewProductResponses(infos []usecase.ProductInfo) []ProductResponse {
	result := make([]ProductResponse, 0, len(infos))
	for i := range infos {
		result = append(result, *NewProductResponse(&infos[i]))
	}
	return result
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrProductNameRequired):
		return http.StatusBadRequest, e.ErrProductNameRequired.Error()
	case errors.Is(err, e.ErrNegativeQuantity):
		return http.StatusBadRequest, e.ErrNegativeQuantity.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrInvalidAmount):
		return http.StatusBadRequest, e.ErrInvalidAmount.Error()
	case errors.Is(err, e.ErrInvalidProductID):
		return http.StatusBadRequest, e.ErrInvalidProductID.Error()
	case errors.Is(err, e.ErrExpectedCSV):
		return http.StatusBadRequest, e.ErrExpectedCSV.Error()
	case errors.Is(err, e.ErrInvalidCodeContent):
		return http.StatusBadRequest, e.ErrInvalidCodeContent.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrLabelNotFound):
		return http.StatusNotFound, e.ErrLabelNotFound.Error()
	case errors.Is(err, e.ErrDuplicateProductID):
		return http.StatusConflict, e.ErrDuplicateProductID.Error()
	case errors.Is(err, e.ErrInsufficientStock):
		return http.StatusConflict, e.ErrInsufficientStock.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePriceToCents разбирает цену из строки в минорные единицы.
// Принимает и точку, и запятую как десятичный разделитель,
// но смешение разделителей в одной строке считает ошибкой.
func parsePriceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, e.ErrInvalidPrice
	}

	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		return 0, e.ErrInvalidPrice
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

func formatPriceFromCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// parseIDParam извлекает идентификатор товара из URL.
func parseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrInvalidProductID
	}
	return id, nil
}
