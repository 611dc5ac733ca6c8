package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// ProductRepository реализует repository.ProductRepository в памяти.
// Используется для разработки и тестирования вместо MongoDB
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]repository.Product
}

// NewProductRepository создаёт новый in-memory репозиторий товаров
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]repository.Product),
	}
}

// Insert сохраняет новый товар и возвращает его ID
func (r *ProductRepository) Insert(ctx context.Context, product repository.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Date.IsZero() {
		product.Date = time.Now()
	}
	r.products[product.ID] = product
	return product.ID, nil
}

// GetByID получает товар по ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}
	return product, nil
}

// FindByIDs получает товары по списку ID.
// Отсутствующие ID пропускаются. Порядок результата намеренно
// не совпадает с порядком ids — как и у курсора MongoDB
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]repository.Product, 0, len(ids))
	for _, id := range ids {
		if product, exists := r.products[id]; exists {
			found = append(found, product)
		}
	}
	// Сортировка по ID имитирует независимый от входа порядок хранилища
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

// List возвращает все товары, новые первыми
func (r *ProductRepository) List(ctx context.Context) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool { return true }, byDateDesc, 0)
}

// ListApproved возвращает только одобренные товары
func (r *ProductRepository) ListApproved(ctx context.Context) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool {
		return p.Status == repository.ProductStatusApproved
	}, nil, 0)
}

// ListNewest возвращает limit последних одобренных товаров
func (r *ProductRepository) ListNewest(ctx context.Context, limit int64) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool {
		return p.Status == repository.ProductStatusApproved
	}, byDateDesc, limit)
}

// ListPopular возвращает limit товаров с наибольшим totalBought
func (r *ProductRepository) ListPopular(ctx context.Context, limit int64) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool { return true }, byTotalBoughtDesc, limit)
}

// ListBySeller возвращает товары продавца
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool {
		return p.SellerEmail == sellerEmail
	}, nil, 0)
}

// ListByGender возвращает товары по гендерному фасету
func (r *ProductRepository) ListByGender(ctx context.Context, gender string) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool {
		return p.Gender == gender
	}, nil, 0)
}

// Update перезаписывает редактируемые продавцом поля товара
func (r *ProductRepository) Update(ctx context.Context, id string, update repository.ProductUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return repository.ErrNotFound
	}

	product.Name = update.Name
	product.Brand = update.Brand
	product.Price = update.Price
	product.Image = update.Image
	product.Discount = update.Discount
	product.Quantity = update.Quantity
	r.products[id] = product
	return nil
}

// Delete удаляет товар
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// SetStatus переводит товар в статус модерации
func (r *ProductRepository) SetStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return repository.ErrNotFound
	}
	product.Status = status
	r.products[id] = product
	return nil
}

// AddFavorite добавляет email в избранное товара (без дубликатов)
func (r *ProductRepository) AddFavorite(ctx context.Context, id, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return repository.ErrNotFound
	}
	for _, fav := range product.Favorites {
		if fav == email {
			return nil
		}
	}
	product.Favorites = append(product.Favorites, email)
	r.products[id] = product
	return nil
}

// RemoveFavorite убирает email из избранного товара
func (r *ProductRepository) RemoveFavorite(ctx context.Context, id, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return repository.ErrNotFound
	}
	// Новый срез: продукты, выданные GetByID/List ранее, разделяют
	// backing array со старым Favorites
	favorites := make([]string, 0, len(product.Favorites))
	for _, fav := range product.Favorites {
		if fav != email {
			favorites = append(favorites, fav)
		}
	}
	product.Favorites = favorites
	r.products[id] = product
	return nil
}

// ListFavorites возвращает товары, добавленные пользователем в избранное
func (r *ProductRepository) ListFavorites(ctx context.Context, email string) ([]repository.Product, error) {
	return r.collect(func(p repository.Product) bool {
		for _, fav := range p.Favorites {
			if fav == email {
				return true
			}
		}
		return false
	}, nil, 0)
}

// AddComment добавляет комментарий с оценкой к товару
func (r *ProductRepository) AddComment(ctx context.Context, id string, comment repository.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return repository.ErrNotFound
	}
	product.Comments = append(product.Comments, comment)
	r.products[id] = product
	return nil
}

// LikeComment добавляет email в лайки комментария
func (r *ProductRepository) LikeComment(ctx context.Context, productID string, commentID int64, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[productID]
	if !exists {
		return repository.ErrNotFound
	}
	for i, comment := range product.Comments {
		if comment.CommentID == commentID {
			for _, like := range comment.Likes {
				if like == email {
					return nil
				}
			}
			product.Comments[i].Likes = append(comment.Likes, email)
			r.products[productID] = product
			return nil
		}
	}
	return repository.ErrNotFound
}

// ReserveSale списывает qty со склада и увеличивает totalBought.
// Под мьютексом операция атомарна, поэтому ErrConcurrentModification
// здесь недостижима — семантика ошибок совпадает с MongoDB реализацией
func (r *ProductRepository) ReserveSale(ctx context.Context, productID string, qty int64) (repository.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[productID]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}
	if product.Quantity < qty {
		return repository.Product{}, repository.ErrInsufficientStock
	}

	product.Quantity -= qty
	product.TotalBought += qty
	r.products[productID] = product
	return product, nil
}

func (r *ProductRepository) collect(match func(repository.Product) bool, less func(a, b repository.Product) bool, limit int64) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]repository.Product, 0)
	for _, product := range r.products {
		if match(product) {
			found = append(found, product)
		}
	}
	if less != nil {
		sort.Slice(found, func(i, j int) bool { return less(found[i], found[j]) })
	}
	if limit > 0 && int64(len(found)) > limit {
		found = found[:limit]
	}
	return found, nil
}

func byDateDesc(a, b repository.Product) bool {
	return a.Date.After(b.Date)
}

func byTotalBoughtDesc(a, b repository.Product) bool {
	return a.TotalBought > b.TotalBought
}
