package cart

import (
	"testing"

	"atelier_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tshirt(qty int, c *models.Customization) models.CartItem {
	return models.CartItem{ProductID: "1", Name: "Classic T-Shirt", Price: 24.99, Quantity: qty, Customization: c}
}

func TestAddMergesIdenticalLines(t *testing.T) {
	items, err := Add(nil, tshirt(1, &models.Customization{Color: "black", Size: "M"}))
	require.NoError(t, err)
	items, err = Add(items, tshirt(2, &models.Customization{Color: "black", Size: "M"}))
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.NotEmpty(t, items[0].Key)
}

func TestAddKeepsDistinctCustomizationsApart(t *testing.T) {
	items, _ := Add(nil, tshirt(1, &models.Customization{Color: "black", Size: "M"}))
	items, _ = Add(items, tshirt(1, &models.Customization{Color: "white", Size: "M"}))
	items, _ = Add(items, tshirt(1, &models.Customization{Color: "white", Size: "M", Text: "Hello"}))
	items, _ = Add(items, tshirt(1, nil))

	require.Len(t, items, 4)
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Key], "clé dupliquée %s", it.Key)
		seen[it.Key] = true
	}
}

func TestAddTreatsEmptyCustomizationAsNone(t *testing.T) {
	items, _ := Add(nil, tshirt(1, &models.Customization{}))
	items, _ = Add(items, tshirt(1, nil))

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Nil(t, items[0].Customization)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	_, err := Add(nil, tshirt(0, nil))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = Add(nil, models.CartItem{Quantity: 1})
	assert.ErrorIs(t, err, ErrMissingProduct)
}

func TestAddDoesNotMutateInput(t *testing.T) {
	original, _ := Add(nil, tshirt(1, nil))
	_, _ = Add(original, tshirt(4, nil))

	assert.Equal(t, 1, original[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	items, _ := Add(nil, tshirt(2, nil))
	key := items[0].Key

	updated, err := UpdateQuantity(items, key, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated[0].Quantity)

	unchanged, err := UpdateQuantity(updated, key, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged[0].Quantity)

	unchanged, err = UpdateQuantity(updated, key, -3)
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged[0].Quantity)

	_, err = UpdateQuantity(updated, "inconnue", 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemove(t *testing.T) {
	items, _ := Add(nil, tshirt(1, nil))
	items, _ = Add(items, models.CartItem{ProductID: "2", Name: "Slim Fit Jeans", Price: 49.99, Quantity: 1})

	out, err := Remove(items, items[0].Key)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ProductID)

	_, err = Remove(out, "inconnue")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestSummarizeShippingThreshold(t *testing.T) {
	cases := []struct {
		name     string
		items    []models.CartItem
		subtotal float64
		shipping float64
		total    float64
	}{
		{"sous le seuil", []models.CartItem{{Price: 24.99, Quantity: 1}}, 24.99, 5.99, 30.98},
		{"exactement au seuil", []models.CartItem{{Price: 25.00, Quantity: 2}}, 50.00, 5.99, 55.99},
		{"au-dessus du seuil", []models.CartItem{{Price: 50.01, Quantity: 1}}, 50.01, 0, 50.01},
		{"plusieurs lignes", []models.CartItem{{Price: 24.99, Quantity: 2}, {Price: 49.99, Quantity: 1}}, 99.97, 0, 99.97},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.items)
			assert.Equal(t, tc.subtotal, s.Subtotal)
			assert.Equal(t, tc.shipping, s.Shipping)
			assert.Equal(t, tc.total, s.Total)
		})
	}
}

func TestSummarizeAvoidsFloatDrift(t *testing.T) {
	s := Summarize([]models.CartItem{{Price: 0.1, Quantity: 1}, {Price: 0.2, Quantity: 1}})
	assert.Equal(t, 0.3, s.Subtotal)
	assert.Equal(t, 6.29, s.Total)
}

func TestSummarizeEmptyCart(t *testing.T) {
	s := Summarize(nil)
	assert.NotNil(t, s.Items)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Subtotal)
	assert.Zero(t, s.Shipping)
	assert.Zero(t, s.Total)
}

func TestSummarizeCountsUnits(t *testing.T) {
	s := Summarize([]models.CartItem{{Price: 1, Quantity: 2}, {Price: 1, Quantity: 3}})
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 5, s.Units)
}
