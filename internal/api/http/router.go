package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/api/http/middleware"
	platformhealth "github.com/MdHasibulHasan1/SmartStore-server/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер витрины.
// readiness - функция для проверки готовности сервиса (например, ping БД).
// Если readiness возвращает false, health endpoint вернёт 503 Service Unavailable.
// verifier проверяет Bearer токены на денежных маршрутах.
func NewRouter(handler *Handler, readiness func() bool, verifier middleware.TokenVerifier) chi.Router {
	router := chi.NewRouter()

	router.Post("/jwt", handler.PostJWT)

	// Пользователи
	router.Get("/users", handler.GetUsers)
	router.Post("/users", handler.PostUsers)
	router.Patch("/users/seller/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PatchUserSeller(w, r, chi.URLParam(r, "id"))
	})
	router.Patch("/users/admin/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PatchUserAdmin(w, r, chi.URLParam(r, "id"))
	})

	// Каталог
	router.Post("/products", handler.PostProducts)
	router.Get("/products", handler.GetProducts)
	router.Get("/approvedProducts", handler.GetApprovedProducts)
	router.Get("/new/products", handler.GetNewProducts)
	router.Get("/popularProducts", handler.GetPopularProducts)
	router.Get("/productsByGenderOrCategory/{value}", func(w http.ResponseWriter, r *http.Request) {
		handler.GetProductsByGender(w, r, chi.URLParam(r, "value"))
	})
	router.Get("/myProducts/{email}", func(w http.ResponseWriter, r *http.Request) {
		handler.GetMyProducts(w, r, chi.URLParam(r, "email"))
	})
	router.Put("/myProduct/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PutMyProductUpdate(w, r, chi.URLParam(r, "id"))
	})
	router.Delete("/myProduct/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.DeleteMyProduct(w, r, chi.URLParam(r, "id"))
	})
	router.Put("/product/approve/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PutProductApprove(w, r, chi.URLParam(r, "id"))
	})
	router.Put("/product/deny/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PutProductDeny(w, r, chi.URLParam(r, "id"))
	})

	// Избранное
	router.Post("/{email}/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.PostFavorite(w, r, chi.URLParam(r, "email"), chi.URLParam(r, "id"))
	})
	router.Delete("/{email}/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.DeleteFavorite(w, r, chi.URLParam(r, "email"), chi.URLParam(r, "id"))
	})
	router.Get("/favorites/{email}", func(w http.ResponseWriter, r *http.Request) {
		handler.GetFavorites(w, r, chi.URLParam(r, "email"))
	})

	// Отзывы
	router.Post("/comments/{id}/ratings", func(w http.ResponseWriter, r *http.Request) {
		handler.PostComment(w, r, chi.URLParam(r, "id"))
	})
	router.Get("/products/{id}/commentsWithRatings", func(w http.ResponseWriter, r *http.Request) {
		handler.GetComments(w, r, chi.URLParam(r, "id"))
	})
	router.Post("/likes/{productId}/{commentId}", func(w http.ResponseWriter, r *http.Request) {
		commentID, err := strconv.ParseInt(chi.URLParam(r, "commentId"), 10, 64)
		if err != nil {
			http.Error(w, "invalid comment id", http.StatusBadRequest)
			return
		}
		handler.PostLike(w, r, chi.URLParam(r, "productId"), commentID)
	})

	// Корзина
	router.Get("/carts/{email}", func(w http.ResponseWriter, r *http.Request) {
		handler.GetCarts(w, r, chi.URLParam(r, "email"))
	})
	router.Post("/carts", handler.PostCarts)
	router.Patch("/cart/{productId}", func(w http.ResponseWriter, r *http.Request) {
		handler.PatchCart(w, r, chi.URLParam(r, "productId"))
	})
	router.Delete("/deletefromcart/{id}", func(w http.ResponseWriter, r *http.Request) {
		handler.DeleteFromCart(w, r, chi.URLParam(r, "id"))
	})

	// Денежные маршруты требуют Bearer токен (middleware возвращает 401)
	router.Group(func(r chi.Router) {
		r.Use(middleware.WithBearerToken(verifier))
		r.Post("/create-payment-intent", handler.PostCreatePaymentIntent)
		r.Post("/payments", handler.PostPayments)
	})
	router.Get("/myPurchasedProduct/{email}", func(w http.ResponseWriter, r *http.Request) {
		handler.GetMyPurchasedProducts(w, r, chi.URLParam(r, "email"))
	})

	// Health без middleware
	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
