package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// CartService содержит бизнес-логику корзины покупателя.
// Массовое удаление после успешной оплаты выполняет CheckoutService,
// здесь только пользовательские операции
type CartService struct {
	logger *zap.Logger
	carts  repository.CartRepository
}

// NewCartService создаёт новый экземпляр CartService
func NewCartService(logger *zap.Logger, carts repository.CartRepository) *CartService {
	return &CartService{
		logger: logger,
		carts:  carts,
	}
}

// ListItems возвращает позиции корзины покупателя
func (s *CartService) ListItems(ctx context.Context, email string) ([]repository.CartItem, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.carts.ListByEmail(ctx, email)
}

// AddItem добавляет новую позицию в корзину
func (s *CartService) AddItem(ctx context.Context, item repository.CartItem) (string, error) {
	if item.CustomerEmail == "" {
		return "", fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	if item.ProductID == "" {
		return "", fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	id, err := s.carts.Insert(ctx, item)
	if err != nil {
		s.logger.Error("failed to add cart item", zap.Error(err))
		return "", fmt.Errorf("failed to add cart item: %w", err)
	}
	return id, nil
}

// MergeQuantity прибавляет delta к количеству позиции с указанным товаром
// и возвращает новое количество. Количество позиции остаётся положительным:
// слияние в ноль или ниже отклоняется репозиторием
func (s *CartService) MergeQuantity(ctx context.Context, productID string, delta int64) (int64, error) {
	if productID == "" {
		return 0, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if delta == 0 {
		return 0, fmt.Errorf("%w: quantity delta must not be zero", ErrInvalidInput)
	}
	return s.carts.MergeQuantity(ctx, productID, delta)
}

// RemoveItem удаляет позицию корзины
func (s *CartService) RemoveItem(ctx context.Context, id string) error {
	return s.carts.Remove(ctx, id)
}
