package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository/memory"
	repoMocks "github.com/MdHasibulHasan1/SmartStore-server/internal/repository/mocks"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/service/mocks"
)

// newCheckoutFixture собирает CheckoutService поверх in-memory репозиториев
func newCheckoutFixture(t *testing.T) (*CheckoutService, *memory.ProductRepository, *memory.CartRepository, *memory.OrderRepository) {
	t.Helper()

	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	gateway := mocks.NewPaymentGateway(t)

	svc := NewCheckoutService(zap.NewNop(), products, carts, orders, gateway, 5*time.Second)
	return svc, products, carts, orders
}

func TestCheckoutService_CreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		amount        decimal.Decimal
		currency      string
		gatewaySecret string
		gatewayErr    error
		expectCall    bool
		wantCurrency  string
		wantErr       error
	}{
		{
			name:          "success: positive amount",
			amount:        decimal.NewFromFloat(49.99),
			currency:      "usd",
			gatewaySecret: "pi_123_secret_456",
			expectCall:    true,
			wantCurrency:  "usd",
		},
		{
			name:          "success: empty currency defaults to usd",
			amount:        decimal.NewFromInt(10),
			currency:      "",
			gatewaySecret: "pi_123_secret_456",
			expectCall:    true,
			wantCurrency:  "usd",
		},
		{
			name:    "error: zero amount rejected before provider call",
			amount:  decimal.Zero,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "error: negative amount rejected before provider call",
			amount:  decimal.NewFromInt(-5),
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := mocks.NewPaymentGateway(t)
			if tt.expectCall {
				gateway.On("CreateIntent", mock.Anything, tt.amount, tt.wantCurrency).
					Return(tt.gatewaySecret, tt.gatewayErr).Once()
			}

			svc := NewCheckoutService(zap.NewNop(), memory.NewProductRepository(), memory.NewCartRepository(), memory.NewOrderRepository(), gateway, 5*time.Second)

			secret, err := svc.CreatePaymentIntent(ctx, tt.amount, tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.gatewaySecret, secret)
		})
	}
}

func TestCheckoutService_CreatePaymentIntent_GatewayError(t *testing.T) {
	ctx := context.Background()
	gatewayErr := errors.New("provider unavailable")

	gateway := mocks.NewPaymentGateway(t)
	gateway.On("CreateIntent", mock.Anything, mock.Anything, "usd").Return("", gatewayErr).Once()

	svc := NewCheckoutService(zap.NewNop(), memory.NewProductRepository(), memory.NewCartRepository(), memory.NewOrderRepository(), gateway, 5*time.Second)

	_, err := svc.CreatePaymentIntent(ctx, decimal.NewFromInt(10), "usd")
	require.ErrorIs(t, err, gatewayErr)
}

func TestCheckoutService_SubmitOrder_Success(t *testing.T) {
	ctx := context.Background()
	svc, products, carts, _ := newCheckoutFixture(t)

	// Товар: остаток 5, продано 10
	productID, err := products.Insert(ctx, repository.Product{
		Name:        "Denim Jacket",
		Status:      repository.ProductStatusApproved,
		Quantity:    5,
		TotalBought: 10,
	})
	require.NoError(t, err)

	cartItemID, err := carts.Insert(ctx, repository.CartItem{
		CustomerEmail: "buyer@example.com",
		ProductID:     productID,
		Quantity:      3,
	})
	require.NoError(t, err)

	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "order-key-1",
		ProductIDs:     []string{productID},
		Quantities:     []int64{3},
		CartItemIDs:    []string{cartItemID},
		Amount:         149.97,
		Currency:       "usd",
	})
	require.NoError(t, err)

	require.NotEmpty(t, out.OrderID)
	require.False(t, out.Duplicate)
	require.Len(t, out.LineOutcomes, 1)
	require.Equal(t, LineStatusOK, out.LineOutcomes[0].Status)
	require.Equal(t, int64(1), out.CartItemsRemoved)
	require.False(t, out.CartPruneFailed)

	// Остаток списан, счётчик продаж увеличен
	product, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(2), product.Quantity)
	require.Equal(t, int64(13), product.TotalBought)

	// Корзина очищена
	items, err := carts.ListByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCheckoutService_SubmitOrder_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, products, _, orders := newCheckoutFixture(t)

	productID, err := products.Insert(ctx, repository.Product{
		Name:     "Sneakers",
		Status:   repository.ProductStatusApproved,
		Quantity: 2,
	})
	require.NoError(t, err)

	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "order-key-2",
		ProductIDs:     []string{productID},
		Quantities:     []int64{3},
		Amount:         30,
	})
	require.NoError(t, err)

	require.Len(t, out.LineOutcomes, 1)
	require.Equal(t, LineStatusInsufficientStock, out.LineOutcomes[0].Status)

	// Остаток не тронут: списания в ноль и ниже не бывает
	product, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(2), product.Quantity)
	require.Equal(t, int64(0), product.TotalBought)

	// Запись об оплате при этом создана: покупатель уже оплатил
	recorded, err := orders.ListByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, recorded, 1)
}

func TestCheckoutService_SubmitOrder_MissingProduct(t *testing.T) {
	ctx := context.Background()
	svc, products, carts, _ := newCheckoutFixture(t)

	// Один товар существует, второй был удалён продавцом
	productID, err := products.Insert(ctx, repository.Product{
		Name:     "T-Shirt",
		Status:   repository.ProductStatusApproved,
		Quantity: 4,
	})
	require.NoError(t, err)

	cartItemID, err := carts.Insert(ctx, repository.CartItem{
		CustomerEmail: "buyer@example.com",
		ProductID:     productID,
		Quantity:      2,
	})
	require.NoError(t, err)

	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "order-key-3",
		ProductIDs:     []string{productID, "missing-product"},
		Quantities:     []int64{2, 1},
		CartItemIDs:    []string{cartItemID},
		Amount:         45,
	})
	require.NoError(t, err)

	// Построчные исходы сохраняют порядок входа
	require.Len(t, out.LineOutcomes, 2)
	require.Equal(t, productID, out.LineOutcomes[0].ProductID)
	require.Equal(t, LineStatusOK, out.LineOutcomes[0].Status)
	require.Equal(t, "missing-product", out.LineOutcomes[1].ProductID)
	require.Equal(t, LineStatusNotFound, out.LineOutcomes[1].Status)

	// Живой товар обработан несмотря на провал соседней позиции
	product, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(2), product.Quantity)

	// Корзина чистится независимо от построчных исходов
	require.Equal(t, int64(1), out.CartItemsRemoved)
}

func TestCheckoutService_SubmitOrder_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	svc, products, _, _ := newCheckoutFixture(t)

	productID, err := products.Insert(ctx, repository.Product{
		Name:     "Hoodie",
		Status:   repository.ProductStatusApproved,
		Quantity: 10,
	})
	require.NoError(t, err)

	input := SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "replay-key",
		ProductIDs:     []string{productID},
		Quantities:     []int64{4},
		Amount:         80,
	}

	first, err := svc.SubmitOrder(ctx, input)
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	// Повтор с тем же ключом: запись не дублируется, остатки не списываются второй раз
	second, err := svc.SubmitOrder(ctx, input)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.Equal(t, first.OrderID, second.OrderID)
	require.Empty(t, second.LineOutcomes)

	product, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(6), product.Quantity)
	require.Equal(t, int64(4), product.TotalBought)
}

func TestCheckoutService_SubmitOrder_GeneratesIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	svc, products, _, _ := newCheckoutFixture(t)

	productID, err := products.Insert(ctx, repository.Product{
		Name:     "Cap",
		Status:   repository.ProductStatusApproved,
		Quantity: 1,
	})
	require.NoError(t, err)

	// Без ключа каждый вызов считается новым заказом
	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:      "buyer@example.com",
		ProductIDs: []string{productID},
		Quantities: []int64{1},
		Amount:     15,
	})
	require.NoError(t, err)
	require.False(t, out.Duplicate)
	require.Equal(t, LineStatusOK, out.LineOutcomes[0].Status)
}

func TestCheckoutService_SubmitOrder_MalformedInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCheckoutFixture(t)

	tests := []struct {
		name  string
		input SubmitOrderInput
	}{
		{
			name: "empty email",
			input: SubmitOrderInput{
				ProductIDs: []string{"p1"},
				Quantities: []int64{1},
			},
		},
		{
			name: "empty products",
			input: SubmitOrderInput{
				Email: "buyer@example.com",
			},
		},
		{
			name: "length mismatch",
			input: SubmitOrderInput{
				Email:      "buyer@example.com",
				ProductIDs: []string{"p1", "p2"},
				Quantities: []int64{1},
			},
		},
		{
			name: "zero quantity",
			input: SubmitOrderInput{
				Email:      "buyer@example.com",
				ProductIDs: []string{"p1"},
				Quantities: []int64{0},
			},
		},
		{
			name: "negative quantity",
			input: SubmitOrderInput{
				Email:      "buyer@example.com",
				ProductIDs: []string{"p1"},
				Quantities: []int64{-2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitOrder(ctx, tt.input)
			require.ErrorIs(t, err, ErrMalformedOrder)
		})
	}
}

func TestCheckoutService_SubmitOrder_ConcurrentOrdersForLastStock(t *testing.T) {
	ctx := context.Background()
	svc, products, _, _ := newCheckoutFixture(t)

	// Остатка хватает ровно на один из двух конкурирующих заказов
	productID, err := products.Insert(ctx, repository.Product{
		Name:     "Limited Edition",
		Status:   repository.ProductStatusApproved,
		Quantity: 2,
	})
	require.NoError(t, err)

	results := make([]*SubmitOrderOutput, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.SubmitOrder(ctx, SubmitOrderInput{
				Email:          "buyer@example.com",
				IdempotencyKey: "concurrent-key-" + string(rune('a'+i)),
				ProductIDs:     []string{productID},
				Quantities:     []int64{2},
				Amount:         40,
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Ровно один заказ получил остаток, второй отклонён построчно
	statuses := map[LineStatus]int{}
	for _, out := range results {
		require.Len(t, out.LineOutcomes, 1)
		statuses[out.LineOutcomes[0].Status]++
	}
	require.Equal(t, 1, statuses[LineStatusOK])
	require.Equal(t, 1, statuses[LineStatusInsufficientStock])

	// Остаток не ушёл в минус
	product, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(0), product.Quantity)
	require.Equal(t, int64(2), product.TotalBought)
}

func TestCheckoutService_SubmitOrder_CartPruneFailure(t *testing.T) {
	ctx := context.Background()
	storageErr := errors.New("connection reset")

	products := repoMocks.NewProductRepository(t)
	carts := repoMocks.NewCartRepository(t)
	orders := repoMocks.NewOrderRepository(t)
	gateway := mocks.NewPaymentGateway(t)

	orders.On("Insert", mock.Anything, mock.Anything).Return("order-1", true, nil).Once()
	products.On("FindByIDs", mock.Anything, []string{"p1"}).
		Return([]repository.Product{{ID: "p1", Quantity: 5}}, nil).Once()
	products.On("ReserveSale", mock.Anything, "p1", int64(1)).
		Return(repository.Product{ID: "p1", Quantity: 4, TotalBought: 1}, nil).Once()
	carts.On("RemoveMany", mock.Anything, []string{"cart-1"}).
		Return(int64(0), storageErr).Once()

	svc := NewCheckoutService(zap.NewNop(), products, carts, orders, gateway, 5*time.Second)

	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "prune-key",
		ProductIDs:     []string{"p1"},
		Quantities:     []int64{1},
		CartItemIDs:    []string{"cart-1"},
		Amount:         10,
	})
	require.NoError(t, err)

	// Провал чистки корзины не валит заказ, но виден в результате
	require.Equal(t, LineStatusOK, out.LineOutcomes[0].Status)
	require.True(t, out.CartPruneFailed)
	require.Equal(t, int64(0), out.CartItemsRemoved)
}

func TestCheckoutService_SubmitOrder_ConcurrentModificationOutcome(t *testing.T) {
	ctx := context.Background()

	products := repoMocks.NewProductRepository(t)
	carts := repoMocks.NewCartRepository(t)
	orders := repoMocks.NewOrderRepository(t)
	gateway := mocks.NewPaymentGateway(t)

	orders.On("Insert", mock.Anything, mock.Anything).Return("order-1", true, nil).Once()
	products.On("FindByIDs", mock.Anything, []string{"p1"}).
		Return([]repository.Product{{ID: "p1", Quantity: 5}}, nil).Once()
	// Условная запись не прошла после всех повторов
	products.On("ReserveSale", mock.Anything, "p1", int64(1)).
		Return(repository.Product{}, repository.ErrConcurrentModification).Once()
	carts.On("RemoveMany", mock.Anything, []string(nil)).
		Return(int64(0), nil).Once()

	svc := NewCheckoutService(zap.NewNop(), products, carts, orders, gateway, 5*time.Second)

	out, err := svc.SubmitOrder(ctx, SubmitOrderInput{
		Email:          "buyer@example.com",
		IdempotencyKey: "cm-key",
		ProductIDs:     []string{"p1"},
		Quantities:     []int64{1},
		Amount:         10,
	})
	require.NoError(t, err)
	require.Equal(t, LineStatusConcurrentModification, out.LineOutcomes[0].Status)
}

func TestCheckoutService_ListPurchases(t *testing.T) {
	ctx := context.Background()
	svc, _, _, orders := newCheckoutFixture(t)

	_, _, err := orders.Insert(ctx, repository.Order{
		IdempotencyKey: "k1",
		Email:          "buyer@example.com",
		Amount:         10,
	})
	require.NoError(t, err)

	purchases, err := svc.ListPurchases(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, purchases, 1)

	_, err = svc.ListPurchases(ctx, "")
	require.ErrorIs(t, err, ErrMalformedOrder)
}
