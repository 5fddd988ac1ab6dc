package repositories

import (
	"context"

	"geekdeals/internal/models"
)

// UserRepository is the user-storage capability. Email and CPF are unique.
type UserRepository interface {
	// Create assigns ID and CreatedAt. Returns ErrDuplicate on a unique violation.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrCPF(ctx context.Context, email, cpf string) (bool, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	// List returns products newest first.
	List(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Update replaces mutable fields and returns the stored product.
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
