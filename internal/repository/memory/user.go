package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// UserRepository реализует repository.UserRepository в памяти
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]repository.User
	byEmail map[string]string
}

// NewUserRepository создаёт новый in-memory репозиторий пользователей
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]repository.User),
		byEmail: make(map[string]string),
	}
}

// Insert сохраняет нового пользователя и возвращает его ID
func (r *UserRepository) Insert(ctx context.Context, user repository.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return "", repository.ErrAlreadyExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = repository.RoleCustomer
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user.ID, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[email]
	if !exists {
		return repository.User{}, repository.ErrNotFound
	}
	return r.users[id], nil
}

// List возвращает всех пользователей
func (r *UserRepository) List(ctx context.Context) ([]repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]repository.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

// SetRole назначает пользователю роль
func (r *UserRepository) SetRole(ctx context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	user.Role = role
	r.users[id] = user
	return nil
}
