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

// UserDocument представляет документ в коллекции users
type UserDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Email string             `bson:"email"`
	Name  string             `bson:"name"`
	Photo string             `bson:"photo,omitempty"`
	Role  string             `bson:"role"`
}

// UserRepository реализует repository.UserRepository используя MongoDB
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository создаёт новый MongoDB репозиторий пользователей.
// Создаёт уникальный индекс на email
func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection("users")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _ = col.Indexes().CreateOne(ctx, indexModel)

	return &UserRepository{col: col}
}

// Insert сохраняет нового пользователя и возвращает его ID
func (r *UserRepository) Insert(ctx context.Context, user repository.User) (string, error) {
	doc := UserDocument{
		ID:    primitive.NewObjectID(),
		Email: user.Email,
		Name:  user.Name,
		Photo: user.Photo,
		Role:  user.Role,
	}
	if doc.Role == "" {
		doc.Role = repository.RoleCustomer
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", err
	}
	return doc.ID.Hex(), nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	var doc UserDocument
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.User{}, repository.ErrNotFound
		}
		return repository.User{}, err
	}
	return toUser(doc), nil
}

// List возвращает всех пользователей
func (r *UserRepository) List(ctx context.Context) ([]repository.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]repository.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, toUser(doc))
	}
	return users, nil
}

// SetRole назначает пользователю роль
func (r *UserRepository) SetRole(ctx context.Context, id, role string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func toUser(doc UserDocument) repository.User {
	return repository.User{
		ID:    doc.ID.Hex(),
		Email: doc.Email,
		Name:  doc.Name,
		Photo: doc.Photo,
		Role:  doc.Role,
	}
}
