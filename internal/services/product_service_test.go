package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geekdeals/internal/models"
	"geekdeals/internal/repositories"
)

type memProductRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Product
	nextID int
	clock  time.Time
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: map[string]*models.Product{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memProductRepo) Create(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	p.ID = fmt.Sprintf("p-%d", r.nextID)
	p.CreatedAt = r.clock
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProductRepo) List(ctx context.Context) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.items[p.ID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	cp.CreatedAt = old.CreatedAt
	r.items[p.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func price(v float64) *float64 { return &v }

func validProduct() models.ProductInput {
	return models.ProductInput{
		Name:        "Zelda TOTK",
		Price:       price(249.9),
		Type:        "game",
		Description: "Switch, mídia física",
		ExpiryDate:  "2025-12-31",
	}
}

func TestProductService_CRUD(t *testing.T) {
	svc := NewProductService(newMemProductRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)
	assert.Equal(t, 249.9, first.Price)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), first.ExpiryDate)

	in := validProduct()
	in.Name = "RTX 4070"
	in.Type = "hardware"
	in.ExpiryDate = "2026-01-15T10:00:00-03:00"
	second, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC), second.ExpiryDate)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	upd := validProduct()
	upd.Price = price(199)
	updated, err := svc.Update(ctx, first.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 199.0, updated.Price)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	require.NoError(t, svc.Delete(ctx, first.ID))
	require.NoError(t, svc.Delete(ctx, first.ID), "delete is idempotent")

	_, err = svc.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, first.ID, validProduct())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_Validation(t *testing.T) {
	svc := NewProductService(newMemProductRepo())
	cases := []struct {
		name   string
		mutate func(*models.ProductInput)
		msg    string
	}{
		{"missing name", func(in *models.ProductInput) { in.Name = "" }, "Campos obrigatórios faltando."},
		{"missing price", func(in *models.ProductInput) { in.Price = nil }, "Campos obrigatórios faltando."},
		{"missing expiry", func(in *models.ProductInput) { in.ExpiryDate = "" }, "Campos obrigatórios faltando."},
		{"negative price", func(in *models.ProductInput) { in.Price = price(-1) }, "Preço inválido."},
		{"bad date", func(in *models.ProductInput) { in.ExpiryDate = "31/12/2025" }, "Data de expiração inválida."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProduct()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.msg, ve.Message)
		})
	}
}

func TestProductService_ZeroPriceIsValid(t *testing.T) {
	svc := NewProductService(newMemProductRepo())
	in := validProduct()
	in.Price = price(0)
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, p.Price)
}
