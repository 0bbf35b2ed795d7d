//go:build integration

package pgdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type ProductRepoSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	repo        *ProductRepo
	ctx         context.Context
}

func (s *ProductRepoSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for range 10 {
		if err = s.dbPool.Ping(s.ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	sourceURL := "file://" + filepath.Join(wd, "../../../db/migrations")
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.repo = NewProductRepo(s.dbPool, converter.NewProductConverterImpl())
}

func (s *ProductRepoSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *ProductRepoSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestProductRepoIntegration(t *testing.T) {
	suite.Run(t, new(ProductRepoSuite))
}

// inTx выполняет fn в транзакции, положенной в контекст так же,
// как это делает слой usecase. Успешный fn фиксируется, ошибочный откатывается.
func (s *ProductRepoSuite) inTx(fn func(ctx context.Context) error) error {
	s.T().Helper()

	tx, err := s.dbPool.Begin(s.ctx)
	require.NoError(s.T(), err, "Failed to begin transaction")

	ctx := context.WithValue(s.ctx, "tx", tx)
	if err := fn(ctx); err != nil {
		_ = tx.Rollback(s.ctx)
		return err
	}

	require.NoError(s.T(), tx.Commit(s.ctx))
	return nil
}

func (s *ProductRepoSuite) createProduct(product *domain.Product) *domain.Product {
	s.T().Helper()

	var created *domain.Product
	err := s.inTx(func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, product)
		return err
	})
	require.NoError(s.T(), err, "createProduct helper failed")
	return created
}

func (s *ProductRepoSuite) TestCreate_AutoID() {
	s.SetupTest()
	// given
	product := domain.NewProduct(0, "Widget", 5, 599, "blue widget")

	// when
	created := s.createProduct(product)

	// then
	require.Equal(s.T(), int64(1), created.ID)
	require.Equal(s.T(), "Widget", created.Name)
	require.Equal(s.T(), int64(5), created.Quantity)
	require.Equal(s.T(), int64(599), created.Price)
	require.NotZero(s.T(), created.CreatedAt)

	fetched, err := s.repo.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.Quantity, fetched.Quantity)
	require.Equal(s.T(), created.Price, fetched.Price)
	require.Equal(s.T(), created.Description, fetched.Description)
}

func (s *ProductRepoSuite) TestCreate_ExplicitID_AdvancesSequence() {
	s.SetupTest()
	// given
	s.createProduct(domain.NewProduct(10, "Widget", 5, 599, ""))

	// when
	auto := s.createProduct(domain.NewProduct(0, "Gadget", 1, 100, ""))

	// then: автоматический id выдаётся после явно занятого
	require.Equal(s.T(), int64(11), auto.ID)
}

func (s *ProductRepoSuite) TestCreate_DuplicateID() {
	s.SetupTest()
	// given
	s.createProduct(domain.NewProduct(7, "Widget", 5, 599, ""))

	// when
	err := s.inTx(func(ctx context.Context) error {
		_, err := s.repo.Create(ctx, domain.NewProduct(7, "Other", 1, 100, ""))
		return err
	})

	// then
	require.ErrorIs(s.T(), err, e.ErrDuplicateProductID)
}

func (s *ProductRepoSuite) TestAdjustQuantity() {
	s.SetupTest()
	// given
	created := s.createProduct(domain.NewProduct(0, "Widget", 5, 599, ""))

	// when: приход
	err := s.inTx(func(ctx context.Context) error {
		product, err := s.repo.AdjustQuantity(ctx, created.ID, 3)
		if err != nil {
			return err
		}
		require.Equal(s.T(), int64(8), product.Quantity)
		return nil
	})
	require.NoError(s.T(), err)

	// when: расход больше остатка
	err = s.inTx(func(ctx context.Context) error {
		_, err := s.repo.AdjustQuantity(ctx, created.ID, -10)
		return err
	})

	// then: отказ не меняет остаток
	require.ErrorIs(s.T(), err, e.ErrInsufficientStock)
	fetched, err := s.repo.GetByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(8), fetched.Quantity)

	// when: списание в ноль
	err = s.inTx(func(ctx context.Context) error {
		product, err := s.repo.AdjustQuantity(ctx, created.ID, -8)
		if err != nil {
			return err
		}
		require.Equal(s.T(), int64(0), product.Quantity)
		return nil
	})
	require.NoError(s.T(), err)

	// when: неизвестный товар
	err = s.inTx(func(ctx context.Context) error {
		_, err := s.repo.AdjustQuantity(ctx, 404, 1)
		return err
	})
	require.ErrorIs(s.T(), err, e.ErrProductNotFound)
}

func (s *ProductRepoSuite) TestSearchByName() {
	s.SetupTest()
	// given
	s.createProduct(domain.NewProduct(0, "Widget", 5, 599, ""))
	s.createProduct(domain.NewProduct(0, "Blue Widget", 3, 799, ""))
	s.createProduct(domain.NewProduct(0, "100% Cotton", 1, 100, ""))

	// when / then: подстрока без учёта регистра
	found, err := s.repo.SearchByName(s.ctx, "WIDG")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)

	// метасимволы LIKE ищутся буквально
	found, err = s.repo.SearchByName(s.ctx, "100%")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	require.Equal(s.T(), "100% Cotton", found[0].Name)

	found, err = s.repo.SearchByName(s.ctx, "sprocket")
	require.NoError(s.T(), err)
	require.Empty(s.T(), found)
}

func (s *ProductRepoSuite) TestUpdate() {
	s.SetupTest()
	// given
	created := s.createProduct(domain.NewProduct(0, "Widget", 5, 599, "old"))

	// when
	var updated *domain.Product
	err := s.inTx(func(ctx context.Context) error {
		var err error
		updated, err = s.repo.Update(ctx, domain.NewProduct(created.ID, "Widget v2", 7, 699, "new"))
		return err
	})

	// then
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Widget v2", updated.Name)
	require.Equal(s.T(), int64(7), updated.Quantity)
	require.NotNil(s.T(), updated.UpdatedAt)

	// when: неизвестный товар
	err = s.inTx(func(ctx context.Context) error {
		_, err := s.repo.Update(ctx, domain.NewProduct(404, "Widget", 1, 100, ""))
		return err
	})
	require.ErrorIs(s.T(), err, e.ErrProductNotFound)
}

func (s *ProductRepoSuite) TestDelete() {
	s.SetupTest()
	// given
	created := s.createProduct(domain.NewProduct(0, "Widget", 5, 599, ""))

	// when
	err := s.inTx(func(ctx context.Context) error {
		return s.repo.Delete(ctx, created.ID)
	})

	// then
	require.NoError(s.T(), err)
	_, err = s.repo.GetByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, e.ErrProductNotFound)

	// повторное удаление — NotFound
	err = s.inTx(func(ctx context.Context) error {
		return s.repo.Delete(ctx, created.ID)
	})
	require.ErrorIs(s.T(), err, e.ErrProductNotFound)
}
