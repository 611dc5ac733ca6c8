package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// ProductDocument представляет документ в коллекции products
// Имена bson-полей соответствуют историческим полям коллекции
type ProductDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Brand       string             `bson:"brand"`
	Price       float64            `bson:"price"`
	Image       string             `bson:"image"`
	Discount    float64            `bson:"discount"`
	Gender      string             `bson:"gender,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Status      string             `bson:"status"`
	SellerEmail string             `bson:"sellerEmail"`
	Date        time.Time          `bson:"date"`
	Quantity    int64              `bson:"quantity"`
	// TotalBought может отсутствовать в старых документах — отсутствие читается как 0
	TotalBought int64             `bson:"totalBought,omitempty"`
	Favorites   []string          `bson:"favorites,omitempty"`
	Comments    []CommentDocument `bson:"commentsWithRatings,omitempty"`
}

// CommentDocument представляет вложенный комментарий с оценкой
type CommentDocument struct {
	CommentID int64    `bson:"commentsId"`
	Email     string   `bson:"email"`
	Text      string   `bson:"text"`
	Rating    int32    `bson:"rating"`
	Likes     []string `bson:"likes,omitempty"`
}

// ProductRepository реализует repository.ProductRepository используя MongoDB
type ProductRepository struct {
	col *mongo.Collection
	// maxAttempts ограничивает повторы условной записи в ReserveSale
	maxAttempts int
}

// NewProductRepository создаёт новый MongoDB репозиторий товаров
func NewProductRepository(db *mongo.Database, maxAttempts int) *ProductRepository {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &ProductRepository{
		col:         db.Collection("products"),
		maxAttempts: maxAttempts,
	}
}

// Insert сохраняет новый товар и возвращает его ID
func (r *ProductRepository) Insert(ctx context.Context, product repository.Product) (string, error) {
	doc := toProductDocument(product)
	doc.ID = primitive.NewObjectID()
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

// GetByID получает товар по ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.Product{}, repository.ErrInvalidID
	}

	var doc ProductDocument
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}

	return toProduct(doc), nil
}

// FindByIDs получает товары по списку ID одним запросом ($in).
// Невалидные и отсутствующие ID просто не попадают в результат.
// Порядок результата определяется курсором, не входным списком.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]repository.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
}

// List возвращает все товары, новые первыми
func (r *ProductRepository) List(ctx context.Context) ([]repository.Product, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}

// ListApproved возвращает только одобренные товары
func (r *ProductRepository) ListApproved(ctx context.Context) ([]repository.Product, error) {
	return r.find(ctx, bson.M{"status": repository.ProductStatusApproved}, nil)
}

// ListNewest возвращает limit последних одобренных товаров
func (r *ProductRepository) ListNewest(ctx context.Context, limit int64) ([]repository.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{"status": repository.ProductStatusApproved}, opts)
}

// ListPopular возвращает limit товаров с наибольшим totalBought
func (r *ProductRepository) ListPopular(ctx context.Context, limit int64) ([]repository.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "totalBought", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// ListBySeller возвращает товары продавца
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]repository.Product, error) {
	return r.find(ctx, bson.M{"sellerEmail": sellerEmail}, nil)
}

// ListByGender возвращает товары по гендерному фасету
func (r *ProductRepository) ListByGender(ctx context.Context, gender string) ([]repository.Product, error) {
	return r.find(ctx, bson.M{"gender": gender}, nil)
}

// Update перезаписывает редактируемые продавцом поля товара
func (r *ProductRepository) Update(ctx context.Context, id string, update repository.ProductUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"name":     update.Name,
			"brand":    update.Brand,
			"price":    update.Price,
			"image":    update.Image,
			"discount": update.Discount,
			"quantity": update.Quantity,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete удаляет товар
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
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

// SetStatus переводит товар в статус модерации
func (r *ProductRepository) SetStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddFavorite добавляет email в избранное товара.
// $addToSet вместо исторического $push: повторное добавление не создаёт дубликат
func (r *ProductRepository) AddFavorite(ctx context.Context, id, email string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$addToSet": bson.M{"favorites": email}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveFavorite убирает email из избранного товара
func (r *ProductRepository) RemoveFavorite(ctx context.Context, id, email string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$pull": bson.M{"favorites": email}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListFavorites возвращает товары, добавленные пользователем в избранное
func (r *ProductRepository) ListFavorites(ctx context.Context, email string) ([]repository.Product, error) {
	return r.find(ctx, bson.M{"favorites": bson.M{"$in": []string{email}}}, nil)
}

// AddComment добавляет комментарий с оценкой к товару
func (r *ProductRepository) AddComment(ctx context.Context, id string, comment repository.Comment) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	doc := CommentDocument{
		CommentID: comment.CommentID,
		Email:     comment.Email,
		Text:      comment.Text,
		Rating:    comment.Rating,
		Likes:     comment.Likes,
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"commentsWithRatings": doc}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// LikeComment добавляет email в лайки комментария ($ — позиционный оператор
// по совпавшему элементу commentsWithRatings)
func (r *ProductRepository) LikeComment(ctx context.Context, productID string, commentID int64, email string) error {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return repository.ErrInvalidID
	}

	filter := bson.M{
		"_id":                            oid,
		"commentsWithRatings.commentsId": commentID,
	}
	update := bson.M{"$addToSet": bson.M{"commentsWithRatings.$.likes": email}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReserveSale атомарно списывает qty со склада и увеличивает totalBought.
// Optimistic concurrency: запись условная по прочитанному quantity, при
// несовпадении токена документ перечитывается и запись повторяется.
// Два одновременных checkout по одному товару не могут затереть декремент
// друг друга — проигравший гонку увидит matched==0 и попробует ещё раз.
func (r *ProductRepository) ReserveSale(ctx context.Context, productID string, qty int64) (repository.Product, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return repository.Product{}, repository.ErrInvalidID
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		var doc ProductDocument
		err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return repository.Product{}, repository.ErrNotFound
			}
			return repository.Product{}, err
		}

		if doc.Quantity < qty {
			return repository.Product{}, repository.ErrInsufficientStock
		}

		// Прочитанный quantity служит токеном: если параллельный checkout
		// успел изменить остаток, фильтр не совпадёт и matched будет 0
		filter := bson.M{"_id": oid, "quantity": doc.Quantity}
		update := bson.M{
			// $inc создаёт totalBought со значением qty, если поля ещё нет
			"$inc": bson.M{"quantity": -qty, "totalBought": qty},
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var updated ProductDocument
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Токен устарел — перечитываем и повторяем
				continue
			}
			return repository.Product{}, err
		}

		return toProduct(updated), nil
	}

	return repository.Product{}, repository.ErrConcurrentModification
}

// find выполняет запрос и декодирует курсор в доменные модели
func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]repository.Product, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.col.Find(ctx, filter, opts)
	} else {
		cursor, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []ProductDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]repository.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, toProduct(doc))
	}
	return products, nil
}

func toProductDocument(p repository.Product) ProductDocument {
	comments := make([]CommentDocument, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, CommentDocument{
			CommentID: c.CommentID,
			Email:     c.Email,
			Text:      c.Text,
			Rating:    c.Rating,
			Likes:     c.Likes,
		})
	}
	return ProductDocument{
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Image:       p.Image,
		Discount:    p.Discount,
		Gender:      p.Gender,
		Category:    p.Category,
		Status:      p.Status,
		SellerEmail: p.SellerEmail,
		Date:        p.Date,
		Quantity:    p.Quantity,
		TotalBought: p.TotalBought,
		Favorites:   p.Favorites,
		Comments:    comments,
	}
}

func toProduct(doc ProductDocument) repository.Product {
	comments := make([]repository.Comment, 0, len(doc.Comments))
	for _, c := range doc.Comments {
		comments = append(comments, repository.Comment{
			CommentID: c.CommentID,
			Email:     c.Email,
			Text:      c.Text,
			Rating:    c.Rating,
			Likes:     c.Likes,
		})
	}
	return repository.Product{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Brand:       doc.Brand,
		Price:       doc.Price,
		Image:       doc.Image,
		Discount:    doc.Discount,
		Gender:      doc.Gender,
		Category:    doc.Category,
		Status:      doc.Status,
		SellerEmail: doc.SellerEmail,
		Date:        doc.Date,
		Quantity:    doc.Quantity,
		TotalBought: doc.TotalBought,
		Favorites:   doc.Favorites,
		Comments:    comments,
	}
}
