package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository/memory"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/service"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/service/mocks"
)

// testServer собирает полный HTTP стек поверх in-memory репозиториев
type testServer struct {
	router   http.Handler
	tokens   *service.TokenService
	products *memory.ProductRepository
	carts    *memory.CartRepository
	orders   *memory.OrderRepository
	gateway  *mocks.PaymentGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	users := memory.NewUserRepository()
	gateway := mocks.NewPaymentGateway(t)

	tokens := service.NewTokenService("test-secret", time.Hour)
	handler := NewHandler(
		logger,
		tokens,
		service.NewUserService(logger, users),
		service.NewCatalogService(logger, products),
		service.NewCartService(logger, carts),
		service.NewCheckoutService(logger, products, carts, orders, gateway, 5*time.Second),
	)
	router := NewRouter(handler, func() bool { return true }, tokens)

	return &testServer{
		router:   router,
		tokens:   tokens,
		products: products,
		carts:    carts,
		orders:   orders,
		gateway:  gateway,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_JWT(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/jwt", "", map[string]string{"email": "buyer@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	email, err := srv.tokens.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", email)

	// Без email токен не выпускается
	rec = srv.do(t, http.MethodPost, "/jwt", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Users(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/users", "", map[string]string{
		"email": "buyer@example.com",
		"name":  "Buyer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID       string `json:"id"`
		Inserted bool   `json:"inserted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.True(t, created.Inserted)

	// Повторная регистрация не создаёт дубликата
	rec = srv.do(t, http.MethodPost, "/users", "", map[string]string{"email": "buyer@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPatch, "/users/seller/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []userDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.Equal(t, repository.RoleSeller, users[0].Role)
}

func TestRouter_CatalogLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/products", "", map[string]any{
		"name":        "Denim Jacket",
		"sellerEmail": "seller@example.com",
		"quantity":    5,
		"price":       49.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// До одобрения товара витрина пуста
	rec = srv.do(t, http.MethodGet, "/approvedProducts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []productDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Empty(t, list)

	rec = srv.do(t, http.MethodPut, "/product/approve/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/approvedProducts", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// Несуществующий товар модерировать нельзя
	rec = srv.do(t, http.MethodPut, "/product/approve/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Cart(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/carts", "", map[string]any{
		"customerEmail": "buyer@example.com",
		"productId":     "p1",
		"quantity":      2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/carts/buyer@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cartItems []cartItemDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartItems))
	require.Len(t, cartItems, 1)

	rec = srv.do(t, http.MethodPatch, "/cart/p1", "", map[string]int64{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := srv.carts.ListByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(5), items[0].Quantity)

	// Количество не может уйти в ноль
	rec = srv.do(t, http.MethodPatch, "/cart/p1", "", map[string]int64{"quantity": -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/deletefromcart/"+items[0].ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PaymentIntentRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/create-payment-intent", "", map[string]any{"price": 49.99})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := srv.tokens.Issue("buyer@example.com")
	require.NoError(t, err)

	srv.gateway.On("CreateIntent", mock.Anything, mock.Anything, "usd").
		Return("pi_123_secret_456", nil).Once()

	rec = srv.do(t, http.MethodPost, "/create-payment-intent", token, map[string]any{"price": 49.99})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "pi_123_secret_456", resp.ClientSecret)
}

func TestRouter_Payments(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	productID, err := srv.products.Insert(ctx, repository.Product{
		Name:     "Sneakers",
		Status:   repository.ProductStatusApproved,
		Quantity: 5,
	})
	require.NoError(t, err)

	cartItemID, err := srv.carts.Insert(ctx, repository.CartItem{
		CustomerEmail: "buyer@example.com",
		ProductID:     productID,
		Quantity:      2,
	})
	require.NoError(t, err)

	body := map[string]any{
		"paymentInfo": map[string]any{
			"idempotencyKey": "order-1",
			"products":       []string{productID},
			"quantities":     []int64{2},
			"cartItems":      []string{cartItemID},
			"amount":         60.0,
			"currency":       "usd",
		},
	}

	// Без токена фулфилмент недоступен
	rec := srv.do(t, http.MethodPost, "/payments", "", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := srv.tokens.Issue("buyer@example.com")
	require.NoError(t, err)

	rec = srv.do(t, http.MethodPost, "/payments", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OrderID          string `json:"orderId"`
		Duplicate        bool   `json:"duplicate"`
		CartItemsRemoved int64  `json:"cartItemsRemoved"`
		Lines            []struct {
			ProductID string `json:"productId"`
			Status    string `json:"status"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderID)
	require.False(t, resp.Duplicate)
	require.Len(t, resp.Lines, 1)
	require.Equal(t, "ok", resp.Lines[0].Status)
	require.Equal(t, int64(1), resp.CartItemsRemoved)

	// Остаток списан
	product, err := srv.products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(3), product.Quantity)
	require.Equal(t, int64(2), product.TotalBought)

	// Повтор с тем же ключом — дубликат, без второго списания
	rec = srv.do(t, http.MethodPost, "/payments", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Duplicate)

	product, err = srv.products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int64(3), product.Quantity)

	// Запись об оплате видна в истории покупок
	rec = srv.do(t, http.MethodGet, "/myPurchasedProduct/buyer@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []orderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, "buyer@example.com", orders[0].Email)
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
