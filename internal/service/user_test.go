package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository/memory"
)

func newUserFixture() (*UserService, *memory.UserRepository) {
	users := memory.NewUserRepository()
	return NewUserService(zap.NewNop(), users), users
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture()

	id, created, err := svc.Register(ctx, repository.User{
		Email: "buyer@example.com",
		Name:  "Buyer",
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, id)

	// Новый пользователь получает роль customer
	stored, err := users.GetByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, repository.RoleCustomer, stored.Role)

	// Повторная регистрация возвращает существующий ID без дубликата
	again, created, err := svc.Register(ctx, repository.User{
		Email: "buyer@example.com",
		Name:  "Buyer",
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, id, again)

	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUserService_Register_EmptyEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserFixture()

	_, _, err := svc.Register(ctx, repository.User{Name: "Nobody"})
	require.Error(t, err)
}

func TestUserService_Promote(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture()

	id, _, err := svc.Register(ctx, repository.User{Email: "seller@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.PromoteToSeller(ctx, id))

	stored, err := users.GetByEmail(ctx, "seller@example.com")
	require.NoError(t, err)
	require.Equal(t, repository.RoleSeller, stored.Role)

	require.NoError(t, svc.PromoteToAdmin(ctx, id))

	stored, err = users.GetByEmail(ctx, "seller@example.com")
	require.NoError(t, err)
	require.Equal(t, repository.RoleAdmin, stored.Role)

	require.ErrorIs(t, svc.PromoteToSeller(ctx, "missing"), repository.ErrNotFound)
}
