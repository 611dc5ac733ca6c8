package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
)

// UserService содержит бизнес-логику работы с пользователями
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

// NewUserService создаёт новый экземпляр UserService
func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

// Register сохраняет нового пользователя.
// Повторная регистрация существующего email не является ошибкой:
// возвращается created=false, как того ждёт клиент
func (s *UserService) Register(ctx context.Context, user repository.User) (id string, created bool, err error) {
	if user.Email == "" {
		return "", false, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	id, err = s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			existing, getErr := s.users.GetByEmail(ctx, user.Email)
			if getErr != nil {
				return "", false, getErr
			}
			return existing.ID, false, nil
		}
		s.logger.Error("failed to register user", zap.Error(err))
		return "", false, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", id),
		zap.String("email", user.Email))
	return id, true, nil
}

// ListUsers возвращает всех пользователей
func (s *UserService) ListUsers(ctx context.Context) ([]repository.User, error) {
	return s.users.List(ctx)
}

// PromoteToSeller назначает пользователю роль seller
func (s *UserService) PromoteToSeller(ctx context.Context, id string) error {
	return s.setRole(ctx, id, repository.RoleSeller)
}

// PromoteToAdmin назначает пользователю роль admin
func (s *UserService) PromoteToAdmin(ctx context.Context, id string) error {
	return s.setRole(ctx, id, repository.RoleAdmin)
}

func (s *UserService) setRole(ctx context.Context, id, role string) error {
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("user role updated",
		zap.String("user_id", id),
		zap.String("role", role))
	return nil
}
