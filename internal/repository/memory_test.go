package repository

import (
	"context"
	"testing"
	"time"

	"atelier_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedProducts(t *testing.T) {
	products := SeedProducts()
	require.Len(t, products, 8)

	customizable := 0
	for _, p := range products {
		if p.IsCustomizable {
			customizable++
			assert.NotEmpty(t, p.AvailableColors, p.Name)
		}
		assert.NotEmpty(t, p.Image, p.Name)
		assert.Positive(t, p.Price, p.Name)
	}
	assert.Equal(t, 5, customizable)
}

func TestMemoryProducts(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryProducts(SeedProducts())

	p, err := r.FindByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Graphic Hoodie", p.Name)

	_, err = r.FindByID(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)

	err = r.Insert(ctx, &models.Product{ID: "3"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, r.Insert(ctx, &models.Product{ID: "9", Name: "Beanie"}))
	all, _ := r.FindAll(ctx)
	assert.Len(t, all, 9)
}

func TestMemoryUsersEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUsers()

	require.NoError(t, r.Insert(ctx, &models.User{ID: "u1", Email: "Jane@Example.com"}))
	assert.ErrorIs(t, r.Insert(ctx, &models.User{ID: "u2", Email: "jane@example.com"}), ErrDuplicate)

	u, err := r.FindByEmail(ctx, " JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	require.NoError(t, r.Insert(ctx, &models.User{ID: "u2", Email: "bob@example.com"}))
	bob, _ := r.FindByID(ctx, "u2")
	bob.Email = "jane@example.com"
	assert.ErrorIs(t, r.Update(ctx, bob), ErrDuplicate)

	bob.Email = "robert@example.com"
	require.NoError(t, r.Update(ctx, bob))
	_, err = r.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	found, err := r.FindByEmail(ctx, "robert@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", found.ID)
}

func TestMemoryOrders(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryOrders()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Insert(ctx, &models.Order{ID: "o1", UserID: "u1", Status: models.OrderPending, CreatedAt: base}))
	require.NoError(t, r.Insert(ctx, &models.Order{ID: "o2", UserID: "u1", Status: models.OrderShipped, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, r.Insert(ctx, &models.Order{ID: "o3", UserID: "u2", Status: models.OrderPending, CreatedAt: base}))

	orders, err := r.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)

	require.NoError(t, r.UpdateStatus(ctx, "o1", models.OrderDelivered))
	o, _ := r.FindByID(ctx, "o1")
	assert.Equal(t, models.OrderDelivered, o.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, "nope", models.OrderShipped), ErrNotFound)
}
