package repository

import (
	"context"
	"errors"
	"time"
)

// Статусы модерации товара
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusDenied   = "denied"
)

// Роли пользователей
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Product представляет доменную модель товара
// Это бизнес-сущность, не привязанная к HTTP или БД
type Product struct {
	ID          string
	Name        string
	Brand       string
	Price       float64
	Image       string
	Discount    float64
	Gender      string
	Category    string
	Status      string
	SellerEmail string
	Date        time.Time
	// Quantity — текущий остаток на складе, не уходит в минус при checkout
	Quantity int64
	// TotalBought — суммарно проданные единицы, монотонно растёт
	// (отсутствующее значение в документе трактуется как 0)
	TotalBought int64
	Favorites   []string
	Comments    []Comment
}

// Comment представляет комментарий с оценкой к товару
type Comment struct {
	CommentID int64
	Email     string
	Text      string
	Rating    int32
	Likes     []string
}

// ProductUpdate содержит поля товара, перезаписываемые продавцом целиком
type ProductUpdate struct {
	Name     string
	Brand    string
	Price    float64
	Image    string
	Discount float64
	Quantity int64
}

// CartItem представляет позицию в корзине покупателя
// ID позиции отличается от ID товара: один товар может лежать
// в корзинах разных покупателей отдельными позициями
type CartItem struct {
	ID            string
	CustomerEmail string
	ProductID     string
	Name          string
	Price         float64
	Image         string
	// Quantity всегда > 0: позиция с нулевым количеством удаляется, а не хранится
	Quantity int64
}

// Order представляет доменную модель записи об оплате (append-only)
// ProductIDs и Quantities — параллельные списки одинаковой длины
type Order struct {
	ID             string
	IdempotencyKey string
	Email          string
	ProductIDs     []string
	Quantities     []int64
	CartItemIDs    []string
	Amount         float64
	Currency       string
	Date           time.Time
}

// User представляет доменную модель пользователя
type User struct {
	ID    string
	Email string
	Name  string
	Photo string
	Role  string
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProductRepository --dir=. --output=./mocks --outpkg=mocks

// ProductRepository определяет интерфейс для работы с хранилищем товаров.
// Service слой зависит от этого интерфейса, а не от конкретной реализации.
type ProductRepository interface {
	// Insert сохраняет новый товар и возвращает его ID
	Insert(ctx context.Context, product Product) (string, error)

	// GetByID получает товар по ID
	// Возвращает ErrNotFound, если товар не найден
	GetByID(ctx context.Context, id string) (Product, error)

	// FindByIDs получает товары по списку ID одним запросом.
	// Порядок результата не гарантируется и не обязан совпадать с порядком ids —
	// вызывающий обязан переиндексировать результат по ID.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)

	// List возвращает все товары, новые первыми
	List(ctx context.Context) ([]Product, error)

	// ListApproved возвращает только одобренные товары
	ListApproved(ctx context.Context) ([]Product, error)

	// ListNewest возвращает limit последних одобренных товаров
	ListNewest(ctx context.Context, limit int64) ([]Product, error)

	// ListPopular возвращает limit товаров с наибольшим totalBought
	ListPopular(ctx context.Context, limit int64) ([]Product, error)

	// ListBySeller возвращает товары продавца
	ListBySeller(ctx context.Context, sellerEmail string) ([]Product, error)

	// ListByGender возвращает товары по гендерному фасету
	ListByGender(ctx context.Context, gender string) ([]Product, error)

	// Update перезаписывает редактируемые продавцом поля товара
	Update(ctx context.Context, id string, update ProductUpdate) error

	// Delete удаляет товар
	Delete(ctx context.Context, id string) error

	// SetStatus переводит товар в статус модерации (approved/denied)
	// Возвращает ErrNotFound, если товар не найден
	SetStatus(ctx context.Context, id, status string) error

	// AddFavorite добавляет email в избранное товара
	AddFavorite(ctx context.Context, id, email string) error

	// RemoveFavorite убирает email из избранного товара
	RemoveFavorite(ctx context.Context, id, email string) error

	// ListFavorites возвращает товары, добавленные пользователем в избранное
	ListFavorites(ctx context.Context, email string) ([]Product, error)

	// AddComment добавляет комментарий с оценкой к товару
	AddComment(ctx context.Context, id string, comment Comment) error

	// LikeComment добавляет email в лайки комментария
	// Возвращает ErrNotFound, если товар или комментарий не найдены
	LikeComment(ctx context.Context, productID string, commentID int64, email string) error

	// ReserveSale атомарно списывает qty со склада и увеличивает totalBought.
	// Запись условная (optimistic concurrency по текущему quantity) с ограниченным
	// числом повторов. Возвращает товар после обновления.
	// Ошибки: ErrNotFound, ErrInsufficientStock, ErrConcurrentModification.
	ReserveSale(ctx context.Context, productID string, qty int64) (Product, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CartRepository --dir=. --output=./mocks --outpkg=mocks

// CartRepository определяет интерфейс для работы с корзиной
type CartRepository interface {
	// ListByEmail возвращает позиции корзины покупателя
	ListByEmail(ctx context.Context, email string) ([]CartItem, error)

	// Insert добавляет новую позицию в корзину и возвращает её ID
	Insert(ctx context.Context, item CartItem) (string, error)

	// MergeQuantity прибавляет delta к количеству существующей позиции
	// (поиск по ID товара) и возвращает новое количество.
	// Возвращает ErrNotFound, если позиции с таким товаром нет, и
	// ErrInvalidQuantity, если слияние опустило бы количество до нуля или ниже.
	MergeQuantity(ctx context.Context, productID string, delta int64) (int64, error)

	// Remove удаляет позицию корзины по её ID
	Remove(ctx context.Context, id string) error

	// RemoveMany удаляет позиции по списку ID и возвращает число удалённых.
	// Идемпотентна: уже отсутствующие ID не являются ошибкой.
	RemoveMany(ctx context.Context, ids []string) (int64, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderRepository --dir=. --output=./mocks --outpkg=mocks

// OrderRepository определяет интерфейс для работы с хранилищем записей об оплате.
// Хранилище append-only: записи никогда не обновляются и не удаляются.
type OrderRepository interface {
	// Insert сохраняет запись об оплате.
	// Если запись с таким idempotency key уже существует, возвращает ID
	// существующей записи и created=false — повторная отправка не создаёт дубликат.
	Insert(ctx context.Context, order Order) (id string, created bool, err error)

	// ListByEmail возвращает записи об оплате покупателя, новые первыми
	ListByEmail(ctx context.Context, email string) ([]Order, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=UserRepository --dir=. --output=./mocks --outpkg=mocks

// UserRepository определяет интерфейс для работы с хранилищем пользователей
type UserRepository interface {
	// Insert сохраняет нового пользователя и возвращает его ID
	// Возвращает ErrAlreadyExists, если email уже занят
	Insert(ctx context.Context, user User) (string, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (User, error)

	// List возвращает всех пользователей
	List(ctx context.Context) ([]User, error)

	// SetRole назначает пользователю роль (seller/admin)
	// Возвращает ErrNotFound, если пользователь не найден
	SetRole(ctx context.Context, id, role string) error
}

// ErrNotFound возвращается, когда сущность не найдена в хранилище
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists возвращается при попытке создать дубликат уникальной сущности
var ErrAlreadyExists = errors.New("already exists")

// ErrInsufficientStock возвращается, когда запрошенное количество превышает остаток
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrConcurrentModification возвращается, когда условная запись не прошла
// после всех повторов из-за параллельных изменений документа
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrInvalidID возвращается, когда ID сущности имеет неверный формат
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidQuantity возвращается, когда операция нарушила бы инвариант
// положительного количества позиции корзины
var ErrInvalidQuantity = errors.New("invalid quantity")
