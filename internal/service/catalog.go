package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// Количество товаров в витринных подборках
const showcaseLimit = 10

// CatalogService содержит бизнес-логику каталога товаров:
// CRUD продавца, модерация, витринные выборки, избранное и комментарии.
// Остатки товара он не трогает — это исключительная зона CheckoutService
type CatalogService struct {
	logger   *zap.Logger
	products repository.ProductRepository
}

// NewCatalogService создаёт новый экземпляр CatalogService
func NewCatalogService(logger *zap.Logger, products repository.ProductRepository) *CatalogService {
	return &CatalogService{
		logger:   logger,
		products: products,
	}
}

// CreateProduct добавляет товар продавца; товар попадает на модерацию
func (s *CatalogService) CreateProduct(ctx context.Context, product repository.Product) (string, error) {
	if product.Name == "" {
		return "", fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if product.SellerEmail == "" {
		return "", fmt.Errorf("%w: seller email is required", ErrInvalidInput)
	}
	if product.Quantity < 0 {
		return "", fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}

	product.Status = repository.ProductStatusPending
	product.Date = time.Now()

	id, err := s.products.Insert(ctx, product)
	if err != nil {
		s.logger.Error("failed to create product", zap.Error(err))
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", id),
		zap.String("seller", product.SellerEmail))
	return id, nil
}

// UpdateProduct перезаписывает редактируемые продавцом поля товара
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, update repository.ProductUpdate) error {
	if update.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return s.products.Update(ctx, id, update)
}

// DeleteProduct удаляет товар
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// ApproveProduct переводит товар в статус approved
func (s *CatalogService) ApproveProduct(ctx context.Context, id string) error {
	return s.products.SetStatus(ctx, id, repository.ProductStatusApproved)
}

// DenyProduct переводит товар в статус denied
func (s *CatalogService) DenyProduct(ctx context.Context, id string) error {
	return s.products.SetStatus(ctx, id, repository.ProductStatusDenied)
}

// GetProduct возвращает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (repository.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts возвращает все товары, новые первыми
func (s *CatalogService) ListProducts(ctx context.Context) ([]repository.Product, error) {
	return s.products.List(ctx)
}

// ListApprovedProducts возвращает одобренные товары
func (s *CatalogService) ListApprovedProducts(ctx context.Context) ([]repository.Product, error) {
	return s.products.ListApproved(ctx)
}

// ListNewProducts возвращает последние одобренные товары
func (s *CatalogService) ListNewProducts(ctx context.Context) ([]repository.Product, error) {
	return s.products.ListNewest(ctx, showcaseLimit)
}

// ListPopularProducts возвращает товары с наибольшим числом продаж
func (s *CatalogService) ListPopularProducts(ctx context.Context) ([]repository.Product, error) {
	return s.products.ListPopular(ctx, showcaseLimit)
}

// ListSellerProducts возвращает товары продавца
func (s *CatalogService) ListSellerProducts(ctx context.Context, sellerEmail string) ([]repository.Product, error) {
	return s.products.ListBySeller(ctx, sellerEmail)
}

// ListProductsByGender возвращает товары по гендерному фасету
func (s *CatalogService) ListProductsByGender(ctx context.Context, gender string) ([]repository.Product, error) {
	return s.products.ListByGender(ctx, gender)
}

// AddFavorite добавляет товар в избранное пользователя
func (s *CatalogService) AddFavorite(ctx context.Context, productID, email string) error {
	return s.products.AddFavorite(ctx, productID, email)
}

// RemoveFavorite убирает товар из избранного пользователя
func (s *CatalogService) RemoveFavorite(ctx context.Context, productID, email string) error {
	return s.products.RemoveFavorite(ctx, productID, email)
}

// ListFavorites возвращает избранные товары пользователя
func (s *CatalogService) ListFavorites(ctx context.Context, email string) ([]repository.Product, error) {
	return s.products.ListFavorites(ctx, email)
}

// AddComment добавляет комментарий с оценкой к товару
func (s *CatalogService) AddComment(ctx context.Context, productID string, comment repository.Comment) error {
	if comment.Email == "" {
		return fmt.Errorf("%w: comment email is required", ErrInvalidInput)
	}
	if comment.Rating < 1 || comment.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if comment.CommentID == 0 {
		comment.CommentID = time.Now().UnixNano()
	}
	return s.products.AddComment(ctx, productID, comment)
}

// ListComments возвращает комментарии товара
func (s *CatalogService) ListComments(ctx context.Context, productID string) ([]repository.Comment, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return product.Comments, nil
}

// LikeComment добавляет лайк пользователя комментарию
func (s *CatalogService) LikeComment(ctx context.Context, productID string, commentID int64, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.products.LikeComment(ctx, productID, commentID, email)
}
