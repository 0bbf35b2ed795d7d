package converter

type ProductInfoRedisModel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}
