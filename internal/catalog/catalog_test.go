package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	mu      sync.Mutex
	ids     []string
	err     error
	indexed []string
}

func (s *stubIndex) Index(_ context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed = append(s.indexed, p.ID)
	return nil
}

func (s *stubIndex) Search(_ context.Context, _ string) ([]string, error) {
	return s.ids, s.err
}

func newService(index Index) *Service {
	return NewService(repository.NewMemoryProducts(repository.SeedProducts()), nil, index)
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestListAndGet(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	p, err := s.Get(ctx, "6")
	require.NoError(t, err)
	assert.Equal(t, "Denim Jacket", p.Name)

	_, err = s.Get(ctx, "42")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCustomizableIsExactSubset(t *testing.T) {
	products, err := newService(nil).Customizable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Classic T-Shirt", "Graphic Hoodie", "Summer Dress", "Denim Jacket", "Polo Shirt"}, names(products))
	for _, p := range products {
		assert.True(t, p.IsCustomizable)
	}
}

func TestByCategory(t *testing.T) {
	products, err := newService(nil).ByCategory(context.Background(), "Jackets")
	require.NoError(t, err)
	assert.Equal(t, []string{"Denim Jacket", "Winter Coat"}, names(products))

	none, err := newService(nil).ByCategory(context.Background(), "Hats")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchFallbackIsCaseInsensitive(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	byName, err := s.Search(ctx, "HOODIE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Graphic Hoodie"}, names(byName))

	byDescription, err := s.Search(ctx, "snow")
	require.NoError(t, err)
	assert.Equal(t, []string{"Winter Coat"}, names(byDescription))

	nothing, err := s.Search(ctx, "tuxedo")
	require.NoError(t, err)
	assert.Empty(t, nothing)
}

func TestSearchUsesIndexFirst(t *testing.T) {
	s := newService(&stubIndex{ids: []string{"8", "unknown", "1"}})

	products, err := s.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []string{"Winter Coat", "Classic T-Shirt"}, names(products))
}

func TestSearchFallsBackWhenIndexFails(t *testing.T) {
	s := newService(&stubIndex{err: errors.New("cluster down")})

	products, err := s.Search(context.Background(), "jeans")
	require.NoError(t, err)
	assert.Equal(t, []string{"Slim Fit Jeans"}, names(products))
}

func TestSearchFallsBackOnEmptyIndexAnswer(t *testing.T) {
	s := newService(&stubIndex{})

	products, err := s.Search(context.Background(), "polo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Polo Shirt"}, names(products))
}

func TestCreate(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	_, err := s.Create(ctx, models.Product{Name: "Cap", Price: 0, Category: "Hats"})
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = s.Create(ctx, models.Product{Name: " ", Price: 10, Category: "Hats"})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	p, err := s.Create(ctx, models.Product{
		Name:             "Cap",
		Price:            14.5,
		Category:         "Hats",
		Images:           []string{"https://cdn.example/cap.jpg"},
		AvailableColors:  []string{"red"},
		AllowImageUpload: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "https://cdn.example/cap.jpg", p.Image)
	assert.Nil(t, p.AvailableColors)
	assert.False(t, p.AllowImageUpload)
	assert.False(t, p.CreatedAt.IsZero())

	fetched, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap", fetched.Name)
}

func TestReindex(t *testing.T) {
	idx := &stubIndex{}
	n, err := newService(idx).Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Len(t, idx.indexed, 8)
}
