// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/repositories"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type ProductService struct {
	repo      repositories.ProductRepository
	assets    AssetStore
	validator *ProductValidator
	events    EventPublisher
}

type ProductSearchParams struct {
	Query        string
	Category     string
	Subcategory  string
	ApprovedOnly bool
	Page         int
	Limit        int
}

// NewProductService wires the pipeline. events may be nil.
func NewProductService(repo repositories.ProductRepository, assets AssetStore, events EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		assets:    assets,
		validator: NewProductValidator(),
		events:    events,
	}
}

// CreateProduct validates the submission, uploads its assets and stores the
// new product unapproved. Nothing is written unless every upload succeeds.
func (s *ProductService) CreateProduct(ctx context.Context, sub *ProductSubmission) (*models.Product, error) {
	// In-flight uploads and writes run to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	input, err := s.validator.ValidateCreate(sub)
	if err != nil {
		return nil, err
	}

	image, thumbnails, err := s.uploadAssets(ctx, input.Image, input.Thumbnails)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:        input.SKU,
		Tags:       pq.StringArray{},
		Image:      image,
		Thumbnail:  pq.StringArray(thumbnails),
		IsApproved: false,
	}
	input.applyTo(product)

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSKU) {
			return nil, conflictError("a product with this sku already exists", err)
		}
		return nil, internalError("failed to create product", err)
	}

	s.publish(ctx, EventProductCreated, product)
	return product, nil
}

// UpdateProduct overwrites the fields present in the submission. Resubmitted
// file fields are uploaded again; the others keep their references.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, sub *ProductSubmission) (*models.Product, error) {
	ctx = context.WithoutCancel(ctx)

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err := s.validator.ValidateUpdate(sub)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil && (!product.HasSKU() || *input.SKU != *product.SKU) {
		return nil, validationError("sku cannot be changed")
	}

	image, thumbnails, err := s.uploadAssets(ctx, input.Image, input.Thumbnails)
	if err != nil {
		return nil, err
	}

	input.applyTo(product)
	if image != "" {
		product.Image = image
	}
	if len(thumbnails) > 0 {
		product.Thumbnail = pq.StringArray(thumbnails)
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, EventProductUpdated, product)
	return product, nil
}

// ApproveProduct marks a product approved. Approving twice is not an error.
func (s *ProductService) ApproveProduct(ctx context.Context, id string) (*models.Product, error) {
	ctx = context.WithoutCancel(ctx)

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.IsApproved {
		return product, nil
	}

	product.IsApproved = true
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, EventProductApproved, product)
	return product, nil
}

// DeleteProduct removes a product for good. Its stored assets are left in place.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)

	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFoundError("product not found")
		}
		return internalError("failed to delete product", err)
	}

	s.publish(ctx, EventProductDeleted, product)
	return nil
}

// GetProducts lists every product, or only approved ones for public callers.
func (s *ProductService) GetProducts(ctx context.Context, approvedOnly bool) ([]models.Product, error) {
	products, err := s.repo.FindAll(ctx, approvedOnly)
	if err != nil {
		return nil, internalError("failed to fetch products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.findProduct(ctx, id)
}

// SearchProducts matches the query against title, description and tags,
// narrows by category and subcategory, and returns one page of results
// with the total match count. Pages past the end are empty.
func (s *ProductService) SearchProducts(ctx context.Context, params ProductSearchParams) ([]models.Product, int64, error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxSearchLimit {
		limit = DefaultSearchLimit
	}

	offset := int64(math.MaxInt32)
	if int64(page-1) <= offset/int64(limit) {
		offset = int64(page-1) * int64(limit)
	}

	products, total, err := s.repo.Search(ctx, repositories.ProductFilter{
		Query:        strings.TrimSpace(params.Query),
		Category:     strings.TrimSpace(params.Category),
		Subcategory:  strings.TrimSpace(params.Subcategory),
		ApprovedOnly: params.ApprovedOnly,
		Offset:       int(offset),
		Limit:        limit,
	})
	if err != nil {
		return nil, 0, internalError("failed to search products", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	return products, total, nil
}

// uploadAssets sends the image and every thumbnail to the asset store
// concurrently and waits for all of them. Thumbnail references keep the
// order of the submitted files. Any failure fails the whole batch.
func (s *ProductService) uploadAssets(ctx context.Context, image string, thumbnails []string) (string, []string, error) {
	g, gctx := errgroup.WithContext(ctx)

	var imageRef string
	if image != "" {
		g.Go(func() error {
			ref, err := s.assets.Upload(gctx, image)
			if err != nil {
				return fmt.Errorf("image: %w", err)
			}
			imageRef = ref
			return nil
		})
	}

	thumbnailRefs := make([]string, len(thumbnails))
	for i, path := range thumbnails {
		g.Go(func() error {
			ref, err := s.assets.Upload(gctx, path)
			if err != nil {
				return fmt.Errorf("thumbnail %d: %w", i, err)
			}
			thumbnailRefs[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", nil, uploadError(err)
	}

	return imageRef, thumbnailRefs, nil
}

func (s *ProductService) findProduct(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError("product id is required")
	}

	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, notFoundError("product not found")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, notFoundError("product not found")
		}
		return nil, internalError("failed to fetch product", err)
	}

	return product, nil
}

func (s *ProductService) save(ctx context.Context, product *models.Product) error {
	if err := s.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			return notFoundError("product not found")
		case errors.Is(err, repositories.ErrDuplicateSKU):
			return conflictError("a product with this sku already exists", err)
		default:
			return internalError("failed to update product", err)
		}
	}
	return nil
}

// publish is best effort: a lost event never fails the request.
func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	if s.events == nil {
		return
	}

	event := ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		IsApproved: product.IsApproved,
		OccurredAt: time.Now().UTC(),
	}
	if product.HasSKU() {
		event.SKU = *product.SKU
	}

	if err := s.events.Publish(ctx, eventType, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":      eventType,
			"product_id": product.ID,
		}).Warn("Failed to publish product event")
	}
}

// applyTo copies every field the input carries onto product.
func (in *ProductInput) applyTo(p *models.Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CutPrice != nil {
		p.CutPrice = decimal.NewNullDecimal(*in.CutPrice)
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stocks != nil {
		p.Stocks = *in.Stocks
	}
	if in.Categories != nil {
		p.Categories = *in.Categories
	}
	if in.Subcategory != nil {
		p.Subcategory = *in.Subcategory
	}
	if in.HasTags {
		p.Tags = pq.StringArray(in.Tags)
	}
}
