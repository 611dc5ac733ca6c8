package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// CartDocument представляет документ в коллекции carts
type CartDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CustomerEmail string             `bson:"customerEmail"`
	ProductID     string             `bson:"productId"`
	Name          string             `bson:"name"`
	Price         float64            `bson:"price"`
	Image         string             `bson:"image"`
	Quantity      int64              `bson:"quantity"`
}

// CartRepository реализует repository.CartRepository используя MongoDB
type CartRepository struct {
	col *mongo.Collection
}

// NewCartRepository создаёт новый MongoDB репозиторий корзины
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection("carts")}
}

// ListByEmail возвращает позиции корзины покупателя
func (r *CartRepository) ListByEmail(ctx context.Context, email string) ([]repository.CartItem, error) {
	cursor, err := r.col.Find(ctx, bson.M{"customerEmail": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []CartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]repository.CartItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toCartItem(doc))
	}
	return items, nil
}

// Insert добавляет новую позицию в корзину и возвращает её ID
func (r *CartRepository) Insert(ctx context.Context, item repository.CartItem) (string, error) {
	doc := CartDocument{
		ID:            primitive.NewObjectID(),
		CustomerEmail: item.CustomerEmail,
		ProductID:     item.ProductID,
		Name:          item.Name,
		Price:         item.Price,
		Image:         item.Image,
		Quantity:      item.Quantity,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

// MergeQuantity прибавляет delta к количеству существующей позиции.
// Атомарный $inc вместо read-then-write: параллельные добавления
// одного товара не теряют обновления друг друга.
// Отрицательная delta проходит только если итог остаётся положительным —
// позиция с нулевым количеством не является валидным состоянием
func (r *CartRepository) MergeQuantity(ctx context.Context, productID string, delta int64) (int64, error) {
	filter := bson.M{"productId": productID}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gt": -delta}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated CartDocument
	err := r.col.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"quantity": delta}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Либо позиции нет, либо слияние опустило бы количество до нуля
			count, countErr := r.col.CountDocuments(ctx, bson.M{"productId": productID})
			if countErr == nil && count > 0 {
				return 0, repository.ErrInvalidQuantity
			}
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return updated.Quantity, nil
}

// Remove удаляет позицию корзины по её ID
func (r *CartRepository) Remove(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveMany удаляет позиции по списку ID и возвращает число удалённых.
// Отсутствующие и невалидные ID пропускаются, это не ошибка
func (r *CartRepository) RemoveMany(ctx context.Context, ids []string) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func toCartItem(doc CartDocument) repository.CartItem {
	return repository.CartItem{
		ID:            doc.ID.Hex(),
		CustomerEmail: doc.CustomerEmail,
		ProductID:     doc.ProductID,
		Name:          doc.Name,
		Price:         doc.Price,
		Image:         doc.Image,
		Quantity:      doc.Quantity,
	}
}
