package pgdb

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/skladtech/inventory-backend/pkg/tr"
)

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Мутации выполняются в транзакции из контекста, чтения идут напрямую через пул.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productColumns = "id, name, quantity, price, description, created_at, updated_at"

// Create сохраняет новый товар. Нулевой ID означает автоматическое присвоение
// из последовательности; явный ID дополнительно продвигает последовательность,
// чтобы будущие автоматические идентификаторы не столкнулись с ним.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ProductModel
	if product.ID == 0 {
		query := `
			INSERT INTO products (name, quantity, price, description)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + productColumns + `;
		`
		err = tx.QueryRow(ctx, query, product.Name, product.Quantity, product.Price, product.Description).
			Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	} else {
		query := `
			INSERT INTO products (id, name, quantity, price, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + productColumns + `;
		`
		err = tx.QueryRow(ctx, query, product.ID, product.Name, product.Quantity, product.Price, product.Description).
			Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	}
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrDuplicateProductID)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if product.ID != 0 {
		advance := `
			SELECT setval(
				pg_get_serial_sequence('products', 'id'),
				(SELECT COALESCE(MAX(id), 1) FROM products)
			);
		`
		if _, err := tx.Exec(ctx, advance); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return p.conv.ToEntity(&model), nil
}

// GetByID возвращает товар по идентификатору.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// List возвращает все товары в порядке возрастания id.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id;`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// Update полностью заменяет изменяемые поля товара.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET name = $2, quantity = $3, price = $4, description = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns + `;
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query, product.ID, product.Name, product.Quantity, product.Price, product.Description).
		Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Delete безвозвратно удаляет товар.
func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// SearchByName ищет товары по подстроке имени без учёта регистра.
func (p *ProductRepo) SearchByName(ctx context.Context, term string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id;
	`

	rows, err := p.pool.Query(ctx, query, escapeLike(term))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// AdjustQuantity атомарно изменяет остаток товара на delta одним условным UPDATE:
// параллельные изменения одной записи сериализуются на уровне строки, и остаток
// не может стать отрицательным даже при гонке.
func (p *ProductRepo) AdjustQuantity(ctx context.Context, id int64, delta int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING ` + productColumns + `;
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query, id, delta).
		Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt)
	if err == nil {
		return p.conv.ToEntity(&model), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Ни одной строки: либо товара нет, либо списание превышает остаток.
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1);`, id).Scan(&exists); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if !exists {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil, e.Wrap(whereami.WhereAmI(), e.ErrInsufficientStock)
}

func (p *ProductRepo) scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(&model.ID, &model.Name, &model.Quantity, &model.Price, &model.Description, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE в пользовательском терме.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
