package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/javajoker/catalog-backend/internal/models"
)

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateSKU is returned when a write would give two products the same SKU.
	ErrDuplicateSKU = errors.New("duplicate sku")
)

// ProductFilter narrows a product search. Offset and Limit are applied after
// filtering; a zero Limit returns every match.
type ProductFilter struct {
	Query        string
	Category     string
	Subcategory  string
	ApprovedOnly bool
	Offset       int
	Limit        int
}

// ProductRepository defines the interface for product data access.
// Results come back in insertion order.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAll(ctx context.Context, approvedOnly bool) ([]models.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}
