package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"geekdeals/internal/models"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
        INSERT INTO products (id, name, price, type, description, expiry_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		id,
		p.Name,
		p.Price,
		p.Type,
		p.Description,
		p.ExpiryDate,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	p.ID = id
	p.CreatedAt = createdAt
	return nil
}

func (r *productRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
        SELECT id, name, price, type, description, expiry_date, created_at
        FROM products
        ORDER BY created_at DESC
    `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Type, &p.Description, &p.ExpiryDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
        SELECT id, name, price, type, description, expiry_date, created_at
        FROM products
        WHERE id = $1
    `
	p := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Type, &p.Description, &p.ExpiryDate, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
        UPDATE products
        SET name=$1, price=$2, type=$3, description=$4, expiry_date=$5
        WHERE id=$6
        RETURNING id, name, price, type, description, expiry_date, created_at
    `
	out := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Price, p.Type, p.Description, p.ExpiryDate, p.ID).Scan(
		&out.ID, &out.Name, &out.Price, &out.Type, &out.Description, &out.ExpiryDate, &out.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return out, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
