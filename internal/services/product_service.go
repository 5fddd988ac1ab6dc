package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"geekdeals/internal/models"
	"geekdeals/internal/repositories"
)

type ProductService struct {
	Repo repositories.ProductRepository
}

func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{Repo: repo}
}

func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	return s.Repo.List(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *ProductService) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.Repo.Update(ctx, p)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func productFromInput(in models.ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	typ := strings.TrimSpace(in.Type)
	desc := strings.TrimSpace(in.Description)
	if name == "" || in.Price == nil || typ == "" || desc == "" || strings.TrimSpace(in.ExpiryDate) == "" {
		return nil, validationf("Campos obrigatórios faltando.")
	}
	if *in.Price < 0 {
		return nil, validationf("Preço inválido.")
	}
	expiry, err := parseExpiryDate(in.ExpiryDate)
	if err != nil {
		return nil, validationf("Data de expiração inválida.")
	}
	return &models.Product{
		Name:        name,
		Price:       *in.Price,
		Type:        typ,
		Description: desc,
		ExpiryDate:  expiry,
	}, nil
}

func parseExpiryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
