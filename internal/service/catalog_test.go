package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository"
	"github.com/MdHasibulHasan1/SmartStore-server/internal/repository/memory"
)

func newCatalogFixture() (*CatalogService, *memory.ProductRepository) {
	products := memory.NewProductRepository()
	return NewCatalogService(zap.NewNop(), products), products
}

func TestCatalogService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		product repository.Product
		wantErr bool
	}{
		{
			name: "success: valid product",
			product: repository.Product{
				Name:        "Denim Jacket",
				SellerEmail: "seller@example.com",
				Quantity:    5,
			},
		},
		{
			name: "error: missing name",
			product: repository.Product{
				SellerEmail: "seller@example.com",
			},
			wantErr: true,
		},
		{
			name: "error: missing seller email",
			product: repository.Product{
				Name: "Denim Jacket",
			},
			wantErr: true,
		},
		{
			name: "error: negative quantity",
			product: repository.Product{
				Name:        "Denim Jacket",
				SellerEmail: "seller@example.com",
				Quantity:    -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products := newCatalogFixture()

			id, err := svc.CreateProduct(ctx, tt.product)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, id)

			// Новый товар всегда уходит на модерацию
			stored, err := products.GetByID(ctx, id)
			require.NoError(t, err)
			require.Equal(t, repository.ProductStatusPending, stored.Status)
			require.False(t, stored.Date.IsZero())
		})
	}
}

func TestCatalogService_Moderation(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	id, err := svc.CreateProduct(ctx, repository.Product{
		Name:        "Sneakers",
		SellerEmail: "seller@example.com",
		Quantity:    3,
	})
	require.NoError(t, err)

	// Товар на модерации не виден на витрине
	approved, err := svc.ListApprovedProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, approved)

	require.NoError(t, svc.ApproveProduct(ctx, id))

	approved, err = svc.ListApprovedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	require.NoError(t, svc.DenyProduct(ctx, id))

	stored, err := products.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, repository.ProductStatusDenied, stored.Status)

	// Несуществующий товар модерировать нельзя
	require.ErrorIs(t, svc.ApproveProduct(ctx, "missing"), repository.ErrNotFound)
}

func TestCatalogService_PopularProducts(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	for i, sold := range []int64{7, 42, 3} {
		_, err := products.Insert(ctx, repository.Product{
			ID:          []string{"a", "b", "c"}[i],
			Name:        "Item",
			Status:      repository.ProductStatusApproved,
			TotalBought: sold,
		})
		require.NoError(t, err)
	}

	popular, err := svc.ListPopularProducts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	// Топ отсортирован по числу продаж
	require.Equal(t, int64(42), popular[0].TotalBought)
	require.Equal(t, int64(7), popular[1].TotalBought)
	require.Equal(t, int64(3), popular[2].TotalBought)
}

func TestCatalogService_NewProducts(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	now := time.Now()
	for i := 0; i < 12; i++ {
		_, err := products.Insert(ctx, repository.Product{
			Name:   "Item",
			Status: repository.ProductStatusApproved,
			Date:   now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	newest, err := svc.ListNewProducts(ctx)
	require.NoError(t, err)
	// Витринная подборка ограничена и начинается с самого свежего
	require.Len(t, newest, showcaseLimit)
	require.Equal(t, now.Add(11*time.Minute).Unix(), newest[0].Date.Unix())
}

func TestCatalogService_Favorites(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	id, err := products.Insert(ctx, repository.Product{
		Name:   "Hoodie",
		Status: repository.ProductStatusApproved,
	})
	require.NoError(t, err)

	require.NoError(t, svc.AddFavorite(ctx, id, "buyer@example.com"))

	favorites, err := svc.ListFavorites(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, id, favorites[0].ID)

	require.NoError(t, svc.RemoveFavorite(ctx, id, "buyer@example.com"))

	favorites, err = svc.ListFavorites(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Empty(t, favorites)
}

func TestCatalogService_Comments(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	id, err := products.Insert(ctx, repository.Product{
		Name:   "Cap",
		Status: repository.ProductStatusApproved,
	})
	require.NoError(t, err)

	// Оценка вне диапазона отклоняется
	err = svc.AddComment(ctx, id, repository.Comment{Email: "buyer@example.com", Rating: 6})
	require.Error(t, err)

	err = svc.AddComment(ctx, id, repository.Comment{
		Email:  "buyer@example.com",
		Text:   "great cap",
		Rating: 5,
	})
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotZero(t, comments[0].CommentID)

	require.NoError(t, svc.LikeComment(ctx, id, comments[0].CommentID, "other@example.com"))

	comments, err = svc.ListComments(ctx, id)
	require.NoError(t, err)
	require.Contains(t, comments[0].Likes, "other@example.com")

	// Лайк несуществующего комментария
	require.ErrorIs(t, svc.LikeComment(ctx, id, 99999, "other@example.com"), repository.ErrNotFound)
}

func TestCatalogService_SellerProducts(t *testing.T) {
	ctx := context.Background()
	svc, products := newCatalogFixture()

	_, err := products.Insert(ctx, repository.Product{Name: "A", SellerEmail: "first@example.com"})
	require.NoError(t, err)
	_, err = products.Insert(ctx, repository.Product{Name: "B", SellerEmail: "second@example.com"})
	require.NoError(t, err)

	mine, err := svc.ListSellerProducts(ctx, "first@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "A", mine[0].Name)
}
