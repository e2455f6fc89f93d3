package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// It runs on postgres in production and on sqlite for local work and tests.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts a new product. A clash on the sku unique index is reported as ErrDuplicateSKU.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// FindAll retrieves every product, or only approved ones.
func (r *GORMProductRepository) FindAll(ctx context.Context, approvedOnly bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}

	products := []models.Product{}
	if err := query.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// Search applies the text query and exact-match filters, then paginates.
func (r *GORMProductRepository) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.ApprovedOnly {
		query = query.Where("is_approved = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("categories = ?", filter.Category)
	}
	if filter.Subcategory != "" {
		query = query.Where("subcategory = ?", filter.Subcategory)
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		if !r.hasArrays() {
			return r.searchScanned(query, strings.ToLower(text), filter)
		}
		term := "%" + escapeLike(strings.ToLower(text)) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR "+
				"EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE LOWER(tag) LIKE ? ESCAPE '\\'))",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := []models.Product{}
	if int64(filter.Offset) >= total {
		return products, total, nil
	}

	query = query.Order("created_at ASC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}

	return products, total, nil
}

// Update writes every column of an existing product except its identity and creation time.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("id", "created_at").Updates(product)
	if res.Error != nil {
		if isDuplicateKeyError(res.Error) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes a product permanently.
func (r *GORMProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// hasArrays reports whether tags are a native array column the query can unnest.
// Other dialects store them as the serialized '{a,b}' literal.
func (r *GORMProductRepository) hasArrays() bool {
	return r.db.Dialector.Name() == "postgres"
}

// searchScanned matches the text query in Go, one tag at a time, and pages
// over the matches. query already carries the exact-match filters.
func (r *GORMProductRepository) searchScanned(query *gorm.DB, text string, filter ProductFilter) ([]models.Product, int64, error) {
	var candidates []models.Product
	if err := query.Order("created_at ASC").Find(&candidates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}

	matches := []models.Product{}
	for _, p := range candidates {
		if matchesText(&p, text) {
			matches = append(matches, p)
		}
	}

	total := int64(len(matches))
	offset := max(filter.Offset, 0)
	if offset >= len(matches) {
		return []models.Product{}, total, nil
	}
	end := len(matches)
	if filter.Limit > 0 && filter.Limit < end-offset {
		end = offset + filter.Limit
	}
	return matches[offset:end], total, nil
}

// matchesText reports whether the lowercased text occurs in the title, the
// description or any single tag.
func matchesText(p *models.Product, text string) bool {
	if strings.Contains(strings.ToLower(p.Title), text) || strings.Contains(strings.ToLower(p.Description), text) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
