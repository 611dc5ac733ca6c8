package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// LineStatus описывает исход обработки одной позиции заказа
type LineStatus string

const (
	// LineStatusOK — остаток списан, totalBought увеличен
	LineStatusOK LineStatus = "ok"
	// LineStatusInsufficientStock — запрошено больше, чем есть на складе
	LineStatusInsufficientStock LineStatus = "insufficient_stock"
	// LineStatusNotFound — товар не найден (мог быть удалён)
	LineStatusNotFound LineStatus = "not_found"
	// LineStatusConcurrentModification — условная запись не прошла после всех повторов
	LineStatusConcurrentModification LineStatus = "concurrent_modification"
	// LineStatusError — ошибка хранилища
	LineStatusError LineStatus = "error"
)

// CheckoutService координирует фулфилмент оплаченного заказа:
// запись об оплате → списание остатков → чистка корзины.
// Единственное место в системе, где поддерживается согласованность
// между сущностями — ни одна из них не покрыта общей транзакцией
type CheckoutService struct {
	logger   *zap.Logger
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	gateway  PaymentGateway
	// timeout ограничивает общую длительность одного checkout
	timeout time.Duration
}

// NewCheckoutService создаёт новый экземпляр CheckoutService.
// Все зависимости — интерфейсы, подменяемые в тестах
func NewCheckoutService(
	logger *zap.Logger,
	products repository.ProductRepository,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	timeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		logger:   logger,
		products: products,
		carts:    carts,
		orders:   orders,
		gateway:  gateway,
		timeout:  timeout,
	}
}

// CreatePaymentIntent создаёт payment intent на указанную сумму
// и возвращает client secret. Доменное состояние не затрагивается:
// провал здесь безопасно повторяем клиентом
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	if amount.Cmp(decimal.Zero) <= 0 {
		return "", ErrInvalidAmount
	}
	if currency == "" {
		currency = "usd"
	}

	secret, err := s.gateway.CreateIntent(ctx, amount, currency)
	if err != nil {
		s.logger.Error("payment intent creation failed", zap.Error(err))
		return "", err
	}
	return secret, nil
}

// SubmitOrderInput содержит финализированный заказ.
// ProductIDs и Quantities — параллельные списки одинаковой длины
type SubmitOrderInput struct {
	Email string
	// IdempotencyKey генерируется вызывающим: повтор запроса с тем же
	// ключом не создаёт вторую запись и не списывает остатки дважды
	IdempotencyKey string
	ProductIDs     []string
	Quantities     []int64
	CartItemIDs    []string
	Amount         float64
	Currency       string
}

// LineOutcome описывает результат обработки одной позиции
type LineOutcome struct {
	ProductID string
	Quantity  int64
	Status    LineStatus
}

// SubmitOrderOutput содержит структурированный результат checkout.
// Наличие OrderID означает "запись об оплате создана"; чистоту
// фулфилмента отражают построчные исходы
type SubmitOrderOutput struct {
	OrderID string
	// Duplicate означает повтор по idempotency key: запись уже существовала,
	// остатки и корзина не затронуты этим вызовом
	Duplicate        bool
	LineOutcomes     []LineOutcome
	CartItemsRemoved int64
	// CartPruneFailed выставляется, если чистка корзины упала по ошибке
	// хранилища (не из-за отсутствующих позиций — это не ошибка)
	CartPruneFailed bool
}

// ListPurchases возвращает записи об оплатах покупателя, новые первыми
func (s *CheckoutService) ListPurchases(ctx context.Context, email string) ([]repository.Order, error) {
	if email == "" {
		return nil, ErrMalformedOrder
	}
	return s.orders.ListByEmail(ctx, email)
}

// SubmitOrder выполняет фулфилмент оплаченного заказа.
//
// Последовательность: валидация формы → запись об оплате → batch-резолв
// товаров → параллельное списание остатков → чистка корзины.
//
// Провал до записи об оплате не оставляет побочных эффектов и безопасно
// повторяем. После записи откатов нет: частичные провалы позиций
// возвращаются построчно, компенсация платежа — ответственность
// вышестоящего процесса. Корзина чистится независимо от исходов позиций:
// покупатель был выставлен на счёт за весь заказ, расхождения видны
// в построчных исходах
func (s *CheckoutService) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*SubmitOrderOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// 1. Валидация формы до любой записи
	if err := validateOrderShape(input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey == "" {
		// Ключ обязан приходить от клиента; генерация здесь сохраняет
		// работоспособность, но лишает повтор запроса дедупликации
		input.IdempotencyKey = uuid.NewString()
		s.logger.Warn("missing idempotency key, generated one",
			zap.String("email", input.Email))
	}

	logger := s.logger.With(
		zap.String("email", input.Email),
		zap.String("idempotency_key", input.IdempotencyKey),
	)

	// 2. Запись об оплате — durable доказательство, что попытка была.
	// Провал здесь — полный провал без побочных эффектов
	order := repository.Order{
		IdempotencyKey: input.IdempotencyKey,
		Email:          input.Email,
		ProductIDs:     input.ProductIDs,
		Quantities:     input.Quantities,
		CartItemIDs:    input.CartItemIDs,
		Amount:         input.Amount,
		Currency:       input.Currency,
		Date:           time.Now(),
	}

	orderID, created, err := s.orders.Insert(ctx, order)
	if err != nil {
		logger.Error("failed to record order", zap.Error(err))
		return nil, err
	}

	if !created {
		// Повтор по idempotency key: запись уже есть, остатки уже списаны
		// предыдущей попыткой — никаких повторных эффектов
		logger.Info("duplicate order submission, returning existing record",
			zap.String("order_id", orderID))
		return &SubmitOrderOutput{
			OrderID:   orderID,
			Duplicate: true,
		}, nil
	}

	logger = logger.With(zap.String("order_id", orderID))
	logger.Info("order recorded", zap.Int("lines", len(input.ProductIDs)))

	// 3. Batch-резолв товаров одним запросом.
	// Результат переиндексируется по ID: порядок курсора хранилища
	// не обязан совпадать с порядком входного списка
	resolved := make(map[string]repository.Product)
	products, err := s.products.FindByIDs(ctx, input.ProductIDs)
	if err != nil {
		logger.Error("product batch lookup failed", zap.Error(err))
		// Товары не зарезолвлены — все позиции получают исход error,
		// но запись об оплате уже существует и возвращается вызывающему
	} else {
		for _, p := range products {
			resolved[p.ID] = p
		}
	}

	// 4. Параллельное списание остатков: позиции независимы,
	// исход каждой собирается отдельно и не прерывает соседние
	outcomes := make([]LineOutcome, len(input.ProductIDs))
	var wg sync.WaitGroup
	for i := range input.ProductIDs {
		productID := input.ProductIDs[i]
		qty := input.Quantities[i]
		outcomes[i] = LineOutcome{ProductID: productID, Quantity: qty}

		if err != nil {
			outcomes[i].Status = LineStatusError
			continue
		}
		if _, ok := resolved[productID]; !ok {
			// Товар удалён или ID невалиден: позиция пропускается,
			// заказ целиком не прерывается
			logger.Warn("product not found, skipping line",
				zap.String("product_id", productID))
			outcomes[i].Status = LineStatusNotFound
			continue
		}

		wg.Add(1)
		go func(i int, productID string, qty int64) {
			defer wg.Done()
			outcomes[i].Status = s.reserveLine(ctx, logger, productID, qty)
		}(i, productID, qty)
	}
	wg.Wait()

	// 5. Чистка корзины: всегда выполняется после записи об оплате,
	// независимо от построчных исходов. Отсутствующие позиции — не ошибка
	removed, pruneErr := s.carts.RemoveMany(ctx, input.CartItemIDs)
	if pruneErr != nil {
		logger.Error("cart prune failed", zap.Error(pruneErr))
	}

	logger.Info("checkout completed",
		zap.Int64("cart_items_removed", removed),
		zap.Int("lines", len(outcomes)),
	)

	return &SubmitOrderOutput{
		OrderID:          orderID,
		LineOutcomes:     outcomes,
		CartItemsRemoved: removed,
		CartPruneFailed:  pruneErr != nil,
	}, nil
}

// reserveLine списывает одну позицию и отображает ошибку хранилища
// в построчный исход
func (s *CheckoutService) reserveLine(ctx context.Context, logger *zap.Logger, productID string, qty int64) LineStatus {
	updated, err := s.products.ReserveSale(ctx, productID, qty)
	switch {
	case err == nil:
		logger.Info("inventory reserved",
			zap.String("product_id", productID),
			zap.Int64("quantity", qty),
			zap.Int64("remaining", updated.Quantity),
			zap.Int64("total_bought", updated.TotalBought),
		)
		return LineStatusOK
	case errors.Is(err, repository.ErrInsufficientStock):
		logger.Warn("insufficient stock",
			zap.String("product_id", productID),
			zap.Int64("quantity", qty))
		return LineStatusInsufficientStock
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		// Товар исчез между резолвом и списанием
		logger.Warn("product disappeared before reservation",
			zap.String("product_id", productID))
		return LineStatusNotFound
	case errors.Is(err, repository.ErrConcurrentModification):
		logger.Warn("reservation lost the race after retries",
			zap.String("product_id", productID))
		return LineStatusConcurrentModification
	default:
		logger.Error("reservation failed",
			zap.String("product_id", productID),
			zap.Error(err))
		return LineStatusError
	}
}

// validateOrderShape проверяет инварианты формы заказа
func validateOrderShape(input SubmitOrderInput) error {
	if input.Email == "" {
		return ErrMalformedOrder
	}
	if len(input.ProductIDs) == 0 {
		return ErrMalformedOrder
	}
	if len(input.ProductIDs) != len(input.Quantities) {
		return ErrMalformedOrder
	}
	for _, qty := range input.Quantities {
		if qty <= 0 {
			return ErrMalformedOrder
		}
	}
	return nil
}
