package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request — ошибки валидации входных данных
	ErrProductNameRequired = fmt.Errorf("product name is required")
	ErrNegativeQuantity    = fmt.Errorf("quantity must be non-negative")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrPricePrecision      = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidAmount       = fmt.Errorf("stock amount must be a positive integer")
	ErrInvalidProductID    = fmt.Errorf("invalid product id")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrLabelNotFound   = fmt.Errorf("label not found")

	// 409 Conflict
	ErrDuplicateProductID = fmt.Errorf("product id already exists")
	ErrInsufficientStock  = fmt.Errorf("insufficient stock")

	// Ошибки разбора файлов прихода/расхода
	ErrExpectedCSV        = fmt.Errorf("expected text/csv body")
	ErrInvalidCodeContent = fmt.Errorf("invalid CODECONTENT payload")

	// Прочее
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
