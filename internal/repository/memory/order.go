package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// OrderRepository реализует repository.OrderRepository в памяти.
// Хранилище append-only, как и MongoDB реализация
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]repository.Order
	// byKey индексирует заказы по idempotency key для дедупликации
	byKey map[string]string
}

// NewOrderRepository создаёт новый in-memory репозиторий записей об оплате
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]repository.Order),
		byKey:  make(map[string]string),
	}
}

// Insert сохраняет запись об оплате.
// При дубликате idempotency key возвращает ID существующей записи и created=false
func (r *OrderRepository) Insert(ctx context.Context, order repository.Order) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, exists := r.byKey[order.IdempotencyKey]; exists {
		return existingID, false, nil
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	r.orders[order.ID] = order
	r.byKey[order.IdempotencyKey] = order.ID
	return order.ID, true, nil
}

// ListByEmail возвращает записи об оплате покупателя, новые первыми
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]repository.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]repository.Order, 0)
	for _, order := range r.orders {
		if order.Email == email {
			found = append(found, order)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Date.After(found[j].Date) })
	return found, nil
}
