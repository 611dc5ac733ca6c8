package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// OrderDocument представляет документ в коллекции payments.
// Запись append-only: после вставки документ никогда не изменяется
type OrderDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	IdempotencyKey string             `bson:"idempotencyKey"`
	Email          string             `bson:"email"`
	ProductIDs     []string           `bson:"products"`
	Quantities     []int64            `bson:"quantities"`
	CartItemIDs    []string           `bson:"cartItems"`
	Amount         float64            `bson:"amount"`
	Currency       string             `bson:"currency"`
	Date           time.Time          `bson:"date"`
}

// OrderRepository реализует repository.OrderRepository используя MongoDB
type OrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository создаёт новый MongoDB репозиторий записей об оплате.
// Создаёт уникальный индекс на idempotencyKey: повторная вставка с тем же
// ключом упирается в индекс, а не создаёт дубликат
func NewOrderRepository(logger *zap.Logger, db *mongo.Database) *OrderRepository {
	col := db.Collection("payments")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "idempotencyKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Без этого индекса повторный запрос создаст дубликат записи,
	// поэтому отказ создания индекса должен быть виден в логах
	if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Error("failed to create unique index on idempotencyKey",
			zap.String("collection", "payments"),
			zap.Error(err),
		)
	}

	return &OrderRepository{col: col}
}

// Insert сохраняет запись об оплате.
// При дубликате idempotency key возвращает ID существующей записи и created=false
func (r *OrderRepository) Insert(ctx context.Context, order repository.Order) (string, bool, error) {
	doc := OrderDocument{
		ID:             primitive.NewObjectID(),
		IdempotencyKey: order.IdempotencyKey,
		Email:          order.Email,
		ProductIDs:     order.ProductIDs,
		Quantities:     order.Quantities,
		CartItemIDs:    order.CartItemIDs,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Date:           order.Date,
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			var existing OrderDocument
			findErr := r.col.FindOne(ctx, bson.M{"idempotencyKey": order.IdempotencyKey}).Decode(&existing)
			if findErr != nil {
				return "", false, findErr
			}
			return existing.ID.Hex(), false, nil
		}
		return "", false, err
	}

	return doc.ID.Hex(), true, nil
}

// ListByEmail возвращает записи об оплате покупателя, новые первыми
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]repository.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []OrderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	orders := make([]repository.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, repository.Order{
			ID:             doc.ID.Hex(),
			IdempotencyKey: doc.IdempotencyKey,
			Email:          doc.Email,
			ProductIDs:     doc.ProductIDs,
			Quantities:     doc.Quantities,
			CartItemIDs:    doc.CartItemIDs,
			Amount:         doc.Amount,
			Currency:       doc.Currency,
			Date:           doc.Date,
		})
	}
	return orders, nil
}
