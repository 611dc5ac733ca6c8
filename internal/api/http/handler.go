package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/authctx"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/service"
)

// Handler содержит HTTP-обработчики витрины и checkout.
// Зависит от service слоя, но не знает о деталях реализации (Mongo, Stripe и т.д.)
type Handler struct {
	logger   *zap.Logger
	tokens   *service.TokenService
	users    *service.UserService
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
}

// NewHandler создаёт новый HTTP handler
func NewHandler(
	logger *zap.Logger,
	tokens *service.TokenService,
	users *service.UserService,
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
) *Handler {
	return &Handler{
		logger:   logger,
		tokens:   tokens,
		users:    users,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
	}
}

// writeJSON сериализует ответ; ошибка кодирования здесь уже не
// исправима, только логируется
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError переводит ошибку service/repository слоя в HTTP статус
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, repository.ErrInvalidID),
		errors.Is(err, repository.ErrInvalidQuantity),
		errors.Is(err, service.ErrMalformedOrder),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decode читает JSON тело запроса в dst
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debug("json decode error", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// --- токены ---

type tokenRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// PostJWT обрабатывает POST /jwt - выпуск токена для email
func (h *Handler) PostJWT(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	token, err := h.tokens.Issue(req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// --- пользователи ---

type registerResponse struct {
	ID       string `json:"id"`
	Inserted bool   `json:"inserted"`
}

// PostUsers обрабатывает POST /users - регистрация пользователя.
// Повтор с тем же email не создаёт дубликата
func (h *Handler) PostUsers(w http.ResponseWriter, r *http.Request) {
	var user userDTO
	if !h.decode(w, r, &user) {
		return
	}

	id, created, err := h.users.Register(r.Context(), fromUserDTO(user))
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, registerResponse{ID: id, Inserted: created})
}

// GetUsers обрабатывает GET /users - список пользователей
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// PatchUserSeller обрабатывает PATCH /users/seller/{id}
func (h *Handler) PatchUserSeller(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.users.PromoteToSeller(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"modified": true})
}

// PatchUserAdmin обрабатывает PATCH /users/admin/{id}
func (h *Handler) PatchUserAdmin(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.users.PromoteToAdmin(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"modified": true})
}

// --- каталог ---

type insertedResponse struct {
	ID string `json:"insertedId"`
}

// PostProducts обрабатывает POST /products - добавление товара продавцом.
// Товар попадает в каталог со статусом pending до решения модератора
func (h *Handler) PostProducts(w http.ResponseWriter, r *http.Request) {
	var product productDTO
	if !h.decode(w, r, &product) {
		return
	}

	id, err := h.catalog.CreateProduct(r.Context(), fromProductDTO(product))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, insertedResponse{ID: id})
}

// GetProducts обрабатывает GET /products - полный каталог (для модераторов)
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetApprovedProducts обрабатывает GET /approvedProducts - витрина
func (h *Handler) GetApprovedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListApprovedProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetNewProducts обрабатывает GET /new/products - последние поступления
func (h *Handler) GetNewProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListNewProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetPopularProducts обрабатывает GET /popularProducts - топ по продажам
func (h *Handler) GetPopularProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListPopularProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProductsByGender обрабатывает GET /productsByGenderOrCategory/{value}
func (h *Handler) GetProductsByGender(w http.ResponseWriter, r *http.Request, value string) {
	products, err := h.catalog.ListProductsByGender(r.Context(), value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetMyProducts обрабатывает GET /myProducts/{email} - товары продавца
func (h *Handler) GetMyProducts(w http.ResponseWriter, r *http.Request, email string) {
	products, err := h.catalog.ListSellerProducts(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// PutMyProductUpdate обрабатывает PUT /myProduct/update/{id}
func (h *Handler) PutMyProductUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var update productUpdateDTO
	if !h.decode(w, r, &update) {
		return
	}

	if err := h.catalog.UpdateProduct(r.Context(), id, fromProductUpdateDTO(update)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"modified": true})
}

// DeleteMyProduct обрабатывает DELETE /myProduct/delete/{id}
func (h *Handler) DeleteMyProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// PutProductApprove обрабатывает PUT /product/approve/{id} - решение модератора
func (h *Handler) PutProductApprove(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.catalog.ApproveProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": repository.ProductStatusApproved})
}

// PutProductDeny обрабатывает PUT /product/deny/{id} - решение модератора
func (h *Handler) PutProductDeny(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.catalog.DenyProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": repository.ProductStatusDenied})
}

// --- избранное и комментарии ---

// PostFavorite обрабатывает POST /{email}/favorites/{id}
func (h *Handler) PostFavorite(w http.ResponseWriter, r *http.Request, email, id string) {
	if err := h.catalog.AddFavorite(r.Context(), id, email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"favorite": true})
}

// DeleteFavorite обрабатывает DELETE /{email}/favorites/{id}
func (h *Handler) DeleteFavorite(w http.ResponseWriter, r *http.Request, email, id string) {
	if err := h.catalog.RemoveFavorite(r.Context(), id, email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"favorite": false})
}

// GetFavorites обрабатывает GET /favorites/{email}
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request, email string) {
	products, err := h.catalog.ListFavorites(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductDTOs(products))
}

type commentRequest struct {
	NewCommentWithRating commentDTO `json:"newCommentWithRating"`
}

// PostComment обрабатывает POST /comments/{id}/ratings - отзыв с оценкой
func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request, id string) {
	var req commentRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.catalog.AddComment(r.Context(), id, fromCommentDTO(req.NewCommentWithRating)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

// GetComments обрабатывает GET /products/{id}/commentsWithRatings
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request, id string) {
	comments, err := h.catalog.ListComments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCommentDTOs(comments))
}

type likeRequest struct {
	Email string `json:"email"`
}

// PostLike обрабатывает POST /likes/{productId}/{commentId}
func (h *Handler) PostLike(w http.ResponseWriter, r *http.Request, productID string, commentID int64) {
	var req likeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.catalog.LikeComment(r.Context(), productID, commentID, req.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"liked": true})
}

// --- корзина ---

// GetCarts обрабатывает GET /carts/{email}
func (h *Handler) GetCarts(w http.ResponseWriter, r *http.Request, email string) {
	items, err := h.cart.ListItems(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCartItemDTOs(items))
}

// PostCarts обрабатывает POST /carts - добавление позиции в корзину
func (h *Handler) PostCarts(w http.ResponseWriter, r *http.Request) {
	var item cartItemDTO
	if !h.decode(w, r, &item) {
		return
	}

	id, err := h.cart.AddItem(r.Context(), fromCartItemDTO(item))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, insertedResponse{ID: id})
}

type cartPatchRequest struct {
	Quantity int64 `json:"quantity"`
}

type cartPatchResponse struct {
	Success  bool  `json:"success"`
	Quantity int64 `json:"quantity"`
}

// PatchCart обрабатывает PATCH /cart/{productId} - дельта количества.
// Отрицательная дельта не может опустить количество ниже единицы
func (h *Handler) PatchCart(w http.ResponseWriter, r *http.Request, productID string) {
	var req cartPatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	quantity, err := h.cart.MergeQuantity(r.Context(), productID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartPatchResponse{Success: true, Quantity: quantity})
}

// DeleteFromCart обрабатывает DELETE /deletefromcart/{id}
func (h *Handler) DeleteFromCart(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.cart.RemoveItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// --- checkout ---

type paymentIntentRequest struct {
	Price json.Number `json:"price"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PostCreatePaymentIntent обрабатывает POST /create-payment-intent.
// Требует валидного токена: сумма приходит от клиента
func (h *Handler) PostCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if !h.decode(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	secret, err := h.checkout.CreatePaymentIntent(r.Context(), amount, "usd")
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, paymentIntentResponse{ClientSecret: secret})
}

type paymentRequest struct {
	PaymentInfo paymentInfo `json:"paymentInfo"`
}

type paymentInfo struct {
	IdempotencyKey string   `json:"idempotencyKey"`
	Email          string   `json:"email"`
	Products       []string `json:"products"`
	Quantities     []int64  `json:"quantities"`
	CartItems      []string `json:"cartItems"`
	Amount         float64  `json:"amount"`
	Currency       string   `json:"currency"`
}

type paymentLineResult struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Status    string `json:"status"`
}

type paymentResponse struct {
	OrderID          string              `json:"orderId"`
	Duplicate        bool                `json:"duplicate"`
	Lines            []paymentLineResult `json:"lines"`
	CartItemsRemoved int64               `json:"cartItemsRemoved"`
}

// PostPayments обрабатывает POST /payments - фулфилмент оплаченного заказа.
// Email берётся из токена, а не из тела: платёж нельзя записать на чужое имя
func (h *Handler) PostPayments(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	email, ok := authctx.EmailFromContext(r.Context())
	if !ok {
		h.writeError(w, service.ErrUnauthorized)
		return
	}

	out, err := h.checkout.SubmitOrder(r.Context(), service.SubmitOrderInput{
		Email:          email,
		IdempotencyKey: req.PaymentInfo.IdempotencyKey,
		ProductIDs:     req.PaymentInfo.Products,
		Quantities:     req.PaymentInfo.Quantities,
		CartItemIDs:    req.PaymentInfo.CartItems,
		Amount:         req.PaymentInfo.Amount,
		Currency:       req.PaymentInfo.Currency,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := paymentResponse{
		OrderID:          out.OrderID,
		Duplicate:        out.Duplicate,
		Lines:            make([]paymentLineResult, 0, len(out.LineOutcomes)),
		CartItemsRemoved: out.CartItemsRemoved,
	}
	for _, line := range out.LineOutcomes {
		resp.Lines = append(resp.Lines, paymentLineResult{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Status:    string(line.Status),
		})
	}

	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	h.writeJSON(w, status, resp)
}

// GetMyPurchasedProducts обрабатывает GET /myPurchasedProduct/{email}
func (h *Handler) GetMyPurchasedProducts(w http.ResponseWriter, r *http.Request, email string) {
	orders, err := h.checkout.ListPurchases(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}
