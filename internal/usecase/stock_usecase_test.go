package usecase

import (
	"context"
	"testing"

	"github.com/skladtech/inventory-backend/internal/domain"
	"github.com/skladtech/inventory-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newStockUC(repo *mockProductRepo, outbox *mockOutboxRepo, cache *mockCacheRepo) *StockUseCase {
	return NewStockUC(repo, outbox, fakeTxStarter{}, cache, nopLogger{})
}

func seedProduct(t *testing.T, repo *mockProductRepo, product *domain.Product) {
	t.Helper()
	_, err := repo.Create(context.Background(), product)
	require.NoError(t, err)
}

func Test_StockUC_AddStock(t *testing.T) {
	testCases := []struct {
		name         string
		seed         *domain.Product
		req          *StockAdjustmentReq
		expectedQty  int64
		expectError  error
		expectEvents int
	}{
		{
			name:         "Success - quantity increases by amount",
			seed:         domain.NewProduct(1, "Widget", 5, 599, ""),
			req:          NewStockAdjustmentReq(1, 3),
			expectedQty:  8,
			expectEvents: 1,
		},
		{
			name:        "Error - zero amount",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, 0),
			expectError: e.ErrInvalidAmount,
		},
		{
			name:        "Error - negative amount",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, -2),
			expectError: e.ErrInvalidAmount,
		},
		{
			name:        "Error - unknown product",
			req:         NewStockAdjustmentReq(404, 3),
			expectError: e.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			repo := newMockProductRepo()
			outbox := &mockOutboxRepo{}
			if tc.seed != nil {
				seedProduct(t, repo, tc.seed)
			}
			uc := newStockUC(repo, outbox, newMockCacheRepo())
			// when
			info, err := uc.AddStock(context.Background(), tc.req)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, info)
				assert.Zero(t, outbox.eventCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQty, info.Quantity)
			assert.Equal(t, tc.expectEvents, outbox.eventCount())
		})
	}
}

func Test_StockUC_RemoveStock(t *testing.T) {
	testCases := []struct {
		name        string
		seed        *domain.Product
		req         *StockAdjustmentReq
		expectedQty int64
		expectError error
	}{
		{
			name:        "Success - quantity decreases by amount",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, 2),
			expectedQty: 3,
		},
		{
			name:        "Success - removal down to zero",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, 5),
			expectedQty: 0,
		},
		{
			name:        "Error - insufficient stock",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, 6),
			expectError: e.ErrInsufficientStock,
		},
		{
			name:        "Error - zero amount",
			seed:        domain.NewProduct(1, "Widget", 5, 599, ""),
			req:         NewStockAdjustmentReq(1, 0),
			expectError: e.ErrInvalidAmount,
		},
		{
			name:        "Error - unknown product",
			req:         NewStockAdjustmentReq(404, 1),
			expectError: e.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			repo := newMockProductRepo()
			if tc.seed != nil {
				seedProduct(t, repo, tc.seed)
			}
			uc := newStockUC(repo, &mockOutboxRepo{}, newMockCacheRepo())
			// when
			info, err := uc.RemoveStock(context.Background(), tc.req)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, info)
				if tc.seed != nil {
					// отклонённое списание не меняет остаток
					assert.Equal(t, tc.seed.Quantity, repo.quantityOf(tc.seed.ID))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQty, info.Quantity)
		})
	}
}

// Сценарий: приход и расход поверх начального остатка, отказ при нехватке
// не оставляет следов, полное списание доводит остаток ровно до нуля.
func Test_StockUC_WidgetScenario(t *testing.T) {
	// given
	repo := newMockProductRepo()
	outbox := &mockOutboxRepo{}
	uc := newStockUC(repo, outbox, newMockCacheRepo())
	seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))

	// when / then
	info, err := uc.AddStock(context.Background(), NewStockAdjustmentReq(1, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Quantity)

	_, err = uc.RemoveStock(context.Background(), NewStockAdjustmentReq(1, 10))
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.Equal(t, int64(8), repo.quantityOf(1))

	info, err = uc.RemoveStock(context.Background(), NewStockAdjustmentReq(1, 8))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Quantity)

	// каждое успешное движение зарегистрировано для публикации
	assert.Equal(t, 2, outbox.eventCount())
}

func Test_StockUC_AddStock_Concurrent(t *testing.T) {
	// given
	const workers = 100

	repo := newMockProductRepo()
	outbox := &mockOutboxRepo{}
	uc := newStockUC(repo, outbox, newMockCacheRepo())
	seedProduct(t, repo, domain.NewProduct(1, "Widget", 0, 599, ""))

	// when
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := uc.AddStock(context.Background(), NewStockAdjustmentReq(1, 1))
			return err
		})
	}

	// then
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(workers), repo.quantityOf(1))
	assert.Equal(t, workers, outbox.eventCount())
}

func Test_StockUC_Search(t *testing.T) {
	// given
	repo := newMockProductRepo()
	seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))
	seedProduct(t, repo, domain.NewProduct(2, "Blue Widget", 3, 799, ""))
	uc := newStockUC(repo, &mockOutboxRepo{}, newMockCacheRepo())

	testCases := []struct {
		name        string
		term        string
		expectedIDs []int64
	}{
		{name: "Numeric term resolves by id", term: "1", expectedIDs: []int64{1}},
		{name: "Numeric term with spaces resolves by id", term: "  2  ", expectedIDs: []int64{2}},
		{name: "Numeric term without a product yields empty result", term: "404", expectedIDs: []int64{}},
		{name: "Text term matches name substring", term: "widg", expectedIDs: []int64{1, 2}},
		{name: "Text term without a match yields empty result", term: "sprocket", expectedIDs: []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			found, err := uc.Search(context.Background(), tc.term)
			// then
			require.NoError(t, err)
			ids := make([]int64, 0, len(found))
			for _, info := range found {
				ids = append(ids, info.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func Test_StockUC_ProcessIncomingGoods(t *testing.T) {
	t.Run("Success - known products gain stock, unknown are registered", func(t *testing.T) {
		// given
		repo := newMockProductRepo()
		seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))
		uc := newStockUC(repo, &mockOutboxRepo{}, newMockCacheRepo())
		req := NewGoodsBatchReq([]GoodsRow{
			{Line: 2, ProductID: 1, Name: "Widget", Price: 599, Quantity: 3},
			{Line: 3, ProductID: 9, Name: "Gadget", Price: 100, Description: "new", Quantity: 7},
		})
		// when
		res, err := uc.ProcessIncomingGoods(context.Background(), req)
		// then
		require.NoError(t, err)
		assert.Equal(t, 2, res.Processed)
		assert.Empty(t, res.Failures)
		assert.NotEmpty(t, res.BatchID)
		assert.Equal(t, int64(8), repo.quantityOf(1))
		assert.Equal(t, int64(7), repo.quantityOf(9))

		created, err := repo.GetByID(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, "Gadget", created.Name)
		assert.Equal(t, int64(100), created.Price)
	})

	t.Run("Success - a bad row fails alone", func(t *testing.T) {
		// given
		repo := newMockProductRepo()
		seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))
		uc := newStockUC(repo, &mockOutboxRepo{}, newMockCacheRepo())
		req := NewGoodsBatchReq([]GoodsRow{
			{Line: 2, ProductID: 1, Name: "Widget", Price: 599, Quantity: 3},
			{Line: 3, ProductID: 9, Name: "", Price: 100, Quantity: 7}, // имя обязательно при регистрации
		})
		// when
		res, err := uc.ProcessIncomingGoods(context.Background(), req)
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, res.Processed)
		require.Len(t, res.Failures, 1)
		assert.Equal(t, 3, res.Failures[0].Line)
		assert.Equal(t, e.ErrProductNameRequired.Error(), res.Failures[0].Reason)
		assert.Equal(t, int64(8), repo.quantityOf(1))
	})
}

func Test_StockUC_ProcessOutgoingGoods(t *testing.T) {
	// given
	repo := newMockProductRepo()
	seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))
	seedProduct(t, repo, domain.NewProduct(2, "Gadget", 2, 100, ""))
	uc := newStockUC(repo, &mockOutboxRepo{}, newMockCacheRepo())
	req := NewGoodsBatchReq([]GoodsRow{
		{Line: 2, ProductID: 1, Quantity: 3},
		{Line: 3, ProductID: 2, Quantity: 10}, // больше, чем есть: строка отклоняется целиком
		{Line: 4, ProductID: 404, Quantity: 1},
	})

	// when
	res, err := uc.ProcessOutgoingGoods(context.Background(), req)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, e.ErrInsufficientStock.Error(), res.Failures[0].Reason)
	assert.Equal(t, e.ErrProductNotFound.Error(), res.Failures[1].Reason)
	assert.Equal(t, int64(2), repo.quantityOf(1))
	assert.Equal(t, int64(2), repo.quantityOf(2)) // остаток не срезан
}

func Test_StockUC_MovementEventTypes(t *testing.T) {
	// given
	repo := newMockProductRepo()
	outbox := &mockOutboxRepo{}
	uc := newStockUC(repo, outbox, newMockCacheRepo())
	seedProduct(t, repo, domain.NewProduct(1, "Widget", 5, 599, ""))

	// when
	_, err := uc.AddStock(context.Background(), NewStockAdjustmentReq(1, 2))
	require.NoError(t, err)
	_, err = uc.RemoveStock(context.Background(), NewStockAdjustmentReq(1, 1))
	require.NoError(t, err)

	// then
	require.Equal(t, 2, outbox.eventCount())
	assert.Equal(t, string(domain.MovementIncoming), outbox.events[0].EventType)
	assert.Equal(t, string(domain.MovementOutgoing), outbox.events[1].EventType)
	assert.NotEmpty(t, outbox.events[0].EventID)
	assert.Equal(t, Pending, outbox.events[0].Status)
}
