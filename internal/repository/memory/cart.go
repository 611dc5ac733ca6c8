package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// CartRepository реализует repository.CartRepository в памяти
type CartRepository struct {
	mu    sync.RWMutex
	items map[string]repository.CartItem
}

// NewCartRepository создаёт новый in-memory репозиторий корзины
func NewCartRepository() *CartRepository {
	return &CartRepository{
		items: make(map[string]repository.CartItem),
	}
}

// ListByEmail возвращает позиции корзины покупателя
func (r *CartRepository) ListByEmail(ctx context.Context, email string) ([]repository.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]repository.CartItem, 0)
	for _, item := range r.items {
		if item.CustomerEmail == email {
			found = append(found, item)
		}
	}
	return found, nil
}

// Insert добавляет новую позицию в корзину и возвращает её ID
func (r *CartRepository) Insert(ctx context.Context, item repository.CartItem) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	r.items[item.ID] = item
	return item.ID, nil
}

// MergeQuantity прибавляет delta к количеству существующей позиции
func (r *CartRepository) MergeQuantity(ctx context.Context, productID string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.ProductID == productID {
			if item.Quantity+delta <= 0 {
				return 0, repository.ErrInvalidQuantity
			}
			item.Quantity += delta
			r.items[id] = item
			return item.Quantity, nil
		}
	}
	return 0, repository.ErrNotFound
}

// Remove удаляет позицию корзины по её ID
func (r *CartRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// RemoveMany удаляет позиции по списку ID и возвращает число удалённых.
// Уже отсутствующие ID не являются ошибкой
func (r *CartRepository) RemoveMany(ctx context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for _, id := range ids {
		if _, exists := r.items[id]; exists {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}
