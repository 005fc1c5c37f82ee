package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

const missingID = "65a1f0c2e4b0a1b2c3d4e5f6"

func ptr[T any](v T) *T { return &v }

// runStoreContract exercises behaviour every Store backend must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) *repositories.Store) {
	t.Run("category lifecycle", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		shirts := &models.Category{Name: "Shirts", Description: "Upper body"}
		require.NoError(t, store.Categories.Create(ctx, shirts))
		require.Len(t, shirts.ID, 24)

		got, err := store.Categories.GetByID(ctx, shirts.ID)
		require.NoError(t, err)
		assert.Equal(t, *shirts, *got)

		byName, err := store.Categories.GetByName(ctx, "Shirts")
		require.NoError(t, err)
		assert.Equal(t, shirts.ID, byName.ID)

		_, err = store.Categories.GetByName(ctx, "shirts")
		assert.True(t, errors.Is(err, repositories.ErrNotFound), "name lookup is exact")

		all, err := store.Categories.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		updated, err := store.Categories.Update(ctx, shirts.ID, models.CategoryUpdate{Name: "Tops"})
		require.NoError(t, err)
		assert.Equal(t, "Tops", updated.Name)
		assert.Equal(t, "Upper body", updated.Description, "absent description is kept")

		require.NoError(t, store.Categories.Delete(ctx, shirts.ID))
		_, err = store.Categories.GetByID(ctx, shirts.ID)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
		assert.True(t, errors.Is(store.Categories.Delete(ctx, shirts.ID), repositories.ErrNotFound))
	})

	t.Run("category name is unique", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Categories.Create(ctx, &models.Category{Name: "Shoes"}))
		other := &models.Category{Name: "Boots"}
		require.NoError(t, store.Categories.Create(ctx, other))

		err := store.Categories.Create(ctx, &models.Category{Name: "Shoes"})
		assert.True(t, errors.Is(err, repositories.ErrDuplicate), "got %v", err)

		_, err = store.Categories.Update(ctx, other.ID, models.CategoryUpdate{Name: "Shoes"})
		assert.True(t, errors.Is(err, repositories.ErrDuplicate), "got %v", err)
	})

	t.Run("category missing or malformed id", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		for _, id := range []string{missingID, "not-an-id"} {
			_, err := store.Categories.GetByID(ctx, id)
			assert.True(t, errors.Is(err, repositories.ErrNotFound), id)
			_, err = store.Categories.Update(ctx, id, models.CategoryUpdate{Name: "x"})
			assert.True(t, errors.Is(err, repositories.ErrNotFound), id)
			assert.True(t, errors.Is(store.Categories.Delete(ctx, id), repositories.ErrNotFound), id)
		}
	})

	t.Run("product create populates category", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		cat := &models.Category{Name: "Shirts"}
		require.NoError(t, store.Categories.Create(ctx, cat))

		p := &models.Product{
			Name:     "Linen shirt",
			Price:    29.9,
			Stock:    12,
			Category: models.CategoryRef{ID: cat.ID},
			Variants: []models.Variant{{Color: "white", Size: "M", Price: 29.9, Stock: 4}, {Color: "blue", Price: 31, Stock: 20}},
			Discount: 15,
		}
		require.NoError(t, store.Products.Create(ctx, p))
		require.Len(t, p.ID, 24)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)

		got, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Linen shirt", got.Name)
		assert.Equal(t, models.CategoryRef{ID: cat.ID, Name: "Shirts"}, got.Category)
		assert.Equal(t, p.Variants, got.Variants, "variant order is kept")
		assert.Equal(t, 15.0, got.Discount)
		assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Millisecond)

		all, err := store.Products.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Shirts", all[0].Category.Name)
	})

	t.Run("product search", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		shirts := &models.Category{Name: "Shirts"}
		shoes := &models.Category{Name: "Shoes"}
		require.NoError(t, store.Categories.Create(ctx, shirts))
		require.NoError(t, store.Categories.Create(ctx, shoes))

		for _, p := range []*models.Product{
			{Name: "Linen Shirt", Price: 30, Stock: 20, Category: models.CategoryRef{ID: shirts.ID}},
			{Name: "Oxford shirt", Price: 45, Stock: 20, Category: models.CategoryRef{ID: shirts.ID}},
			{Name: "Shirt-shaped shoe 50%", Price: 80, Stock: 20, Category: models.CategoryRef{ID: shoes.ID}},
			{Name: "Sneaker", Price: 60, Stock: 20, Category: models.CategoryRef{ID: shoes.ID}},
		} {
			require.NoError(t, store.Products.Create(ctx, p))
		}

		names := func(ps []models.Product) []string {
			out := make([]string, 0, len(ps))
			for _, p := range ps {
				out = append(out, p.Name)
			}
			return out
		}

		got, err := store.Products.Search(ctx, models.ProductFilter{Query: "SHIRT"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Linen Shirt", "Oxford shirt", "Shirt-shaped shoe 50%"}, names(got))

		got, err = store.Products.Search(ctx, models.ProductFilter{Query: "shirt", CategoryID: shirts.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Linen Shirt", "Oxford shirt"}, names(got))

		got, err = store.Products.Search(ctx, models.ProductFilter{CategoryID: shoes.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Shirt-shaped shoe 50%", "Sneaker"}, names(got))

		got, err = store.Products.Search(ctx, models.ProductFilter{Query: "0%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Shirt-shaped shoe 50%"}, names(got), "query is matched literally")

		got, err = store.Products.Search(ctx, models.ProductFilter{Query: "s.*t"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = store.Products.Search(ctx, models.ProductFilter{CategoryID: "bogus"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		got, err = store.Products.Search(ctx, models.ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("product low stock", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		cat := &models.Category{Name: "Shirts"}
		require.NoError(t, store.Categories.Create(ctx, cat))

		ref := models.CategoryRef{ID: cat.ID}
		for _, p := range []*models.Product{
			{Name: "A", Price: 1, Stock: 3, Category: ref},
			{Name: "B", Price: 1, Stock: 50, Category: ref, Variants: []models.Variant{{Price: 1, Stock: 30}, {Price: 1, Stock: 2}}},
			{Name: "C", Price: 1, Stock: 10, Category: ref, Variants: []models.Variant{{Price: 1, Stock: 10}}},
			{Name: "D", Price: 1, Stock: 100, Category: ref},
		} {
			require.NoError(t, store.Products.Create(ctx, p))
		}

		got, err := store.Products.GetLowStock(ctx, models.LowStockThreshold)
		require.NoError(t, err)
		names := make([]string, 0, len(got))
		for _, p := range got {
			names = append(names, p.Name)
			assert.True(t, p.IsLowStock(), p.Name)
		}
		assert.ElementsMatch(t, []string{"A", "B"}, names)
	})

	t.Run("product update", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		shirts := &models.Category{Name: "Shirts"}
		sale := &models.Category{Name: "Sale"}
		require.NoError(t, store.Categories.Create(ctx, shirts))
		require.NoError(t, store.Categories.Create(ctx, sale))

		p := &models.Product{
			Name:        "Linen shirt",
			Description: "Breezy",
			Price:       30,
			Stock:       12,
			Category:    models.CategoryRef{ID: shirts.ID},
			Variants:    []models.Variant{{Color: "white", Price: 30, Stock: 4}},
			Discount:    10,
		}
		require.NoError(t, store.Products.Create(ctx, p))

		updated, err := store.Products.Update(ctx, p.ID, models.ProductUpdate{
			Name:       "Linen shirt II",
			Price:      35,
			CategoryID: sale.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Linen shirt II", updated.Name)
		assert.Equal(t, 35.0, updated.Price)
		assert.Equal(t, models.CategoryRef{ID: sale.ID, Name: "Sale"}, updated.Category)
		assert.Equal(t, "Breezy", updated.Description)
		assert.Equal(t, 12, updated.Stock)
		assert.Equal(t, 10.0, updated.Discount)
		assert.Equal(t, p.Variants, updated.Variants)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

		updated, err = store.Products.Update(ctx, p.ID, models.ProductUpdate{
			Name:       "Linen shirt II",
			Price:      35,
			CategoryID: sale.ID,
			Stock:      ptr(0),
			Discount:   ptr(0.0),
			Variants:   []models.Variant{{Color: "red", Size: "L", Price: 36, Stock: 1}, {Color: "green", Price: 36}},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Stock)
		assert.Equal(t, 0.0, updated.Discount)
		assert.Equal(t, []models.Variant{{Color: "red", Size: "L", Price: 36, Stock: 1}, {Color: "green", Price: 36}}, updated.Variants)

		updated, err = store.Products.Update(ctx, p.ID, models.ProductUpdate{
			Name:       "Linen shirt II",
			Price:      35,
			CategoryID: sale.ID,
			Variants:   []models.Variant{},
		})
		require.NoError(t, err)
		assert.Empty(t, updated.Variants)

		_, err = store.Products.Update(ctx, missingID, models.ProductUpdate{Name: "x", Price: 1, CategoryID: sale.ID})
		assert.True(t, errors.Is(err, repositories.ErrNotFound), "got %v", err)
	})

	t.Run("product delete", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		cat := &models.Category{Name: "Shirts"}
		require.NoError(t, store.Categories.Create(ctx, cat))
		p := &models.Product{Name: "Tee", Price: 9, Category: models.CategoryRef{ID: cat.ID}, Variants: []models.Variant{{Price: 9, Stock: 1}}}
		require.NoError(t, store.Products.Create(ctx, p))

		require.NoError(t, store.Products.Delete(ctx, p.ID))
		_, err := store.Products.GetByID(ctx, p.ID)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
		assert.True(t, errors.Is(store.Products.Delete(ctx, p.ID), repositories.ErrNotFound))
		assert.True(t, errors.Is(store.Products.Delete(ctx, "not-an-id"), repositories.ErrNotFound))
	})

	t.Run("category delete leaves products dangling", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		cat := &models.Category{Name: "Shirts"}
		require.NoError(t, store.Categories.Create(ctx, cat))
		p := &models.Product{Name: "Tee", Price: 9, Category: models.CategoryRef{ID: cat.ID}}
		require.NoError(t, store.Products.Create(ctx, p))

		require.NoError(t, store.Categories.Delete(ctx, cat.ID))

		got, err := store.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryRef{ID: cat.ID}, got.Category)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}
