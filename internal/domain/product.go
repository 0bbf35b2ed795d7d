package domain

import "time"

// Product описывает учётную единицу склада
type Product struct {
	ID          int64
	Name        string
	Quantity    int64
	Price       int64 // Цена хранится в минорных единицах (центах)
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(id int64, name string, quantity int64, price int64, description string) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		Description: description,
	}
}
