package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/javajoker/catalog-backend/internal/models"
)

// ProductsCollection is the collection products live in when DB_DRIVER=mongodb.
const ProductsCollection = "products"

// MongoProductRepository stores products as documents, one per product.
type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(collection *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{
		collection: collection,
	}
}

// productDocument is the stored shape of a product. Money is kept as
// Decimal128 so prices survive the round trip exactly.
type productDocument struct {
	ID               string                `bson:"_id"`
	SKU              *string               `bson:"sku,omitempty"`
	Title            string                `bson:"title"`
	Description      string                `bson:"description"`
	ShortDescription string                `bson:"shortDescription"`
	Price            primitive.Decimal128  `bson:"price"`
	CutPrice         *primitive.Decimal128 `bson:"cutPrice,omitempty"`
	Discount         string                `bson:"discount,omitempty"`
	Stocks           int                   `bson:"stocks"`
	Categories       string                `bson:"categories"`
	Subcategory      string                `bson:"subcategory"`
	Tags             []string              `bson:"tags"`
	Image            string                `bson:"image"`
	Thumbnail        []string              `bson:"thumbnail"`
	IsApproved       bool                  `bson:"isApproved"`
	CreatedAt        time.Time             `bson:"createdAt"`
	UpdatedAt        time.Time             `bson:"updatedAt"`
}

// EnsureIndexes creates the sku uniqueness index and the filter indexes.
// Products without a sku are left out of the unique index.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().
				SetName("uniq_products_sku").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "categories", Value: 1}, {Key: "subcategory", Value: 1}}},
		{Keys: bson.D{{Key: "isApproved", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	doc, err := toDocument(product)
	if err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return fromDocument(&doc)
}

func (r *MongoProductRepository) FindAll(ctx context.Context, approvedOnly bool) ([]models.Product, error) {
	filter := bson.M{}
	if approvedOnly {
		filter["isApproved"] = true
	}
	return r.find(ctx, filter, naturalOrder())
}

func (r *MongoProductRepository) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := bson.M{}
	if filter.ApprovedOnly {
		query["isApproved"] = true
	}
	if filter.Category != "" {
		query["categories"] = filter.Category
	}
	if filter.Subcategory != "" {
		query["subcategory"] = filter.Subcategory
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	if int64(filter.Offset) >= total {
		return []models.Product{}, total, nil
	}

	opts := naturalOrder().SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	products, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()

	doc, err := toDocument(product)
	if err != nil {
		return err
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *MongoProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for i := range docs {
		product, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

// naturalOrder returns documents in the order they were inserted.
func naturalOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
}

func toDocument(p *models.Product) (*productDocument, error) {
	price, err := primitive.ParseDecimal128(p.Price.String())
	if err != nil {
		return nil, fmt.Errorf("invalid price %s: %w", p.Price, err)
	}

	doc := &productDocument{
		ID:               p.ID.String(),
		SKU:              p.SKU,
		Title:            p.Title,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            price,
		Discount:         p.Discount,
		Stocks:           p.Stocks,
		Categories:       p.Categories,
		Subcategory:      p.Subcategory,
		Tags:             nonNil(p.Tags),
		Image:            p.Image,
		Thumbnail:        nonNil(p.Thumbnail),
		IsApproved:       p.IsApproved,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if p.CutPrice.Valid {
		cut, err := primitive.ParseDecimal128(p.CutPrice.Decimal.String())
		if err != nil {
			return nil, fmt.Errorf("invalid cutPrice %s: %w", p.CutPrice.Decimal, err)
		}
		doc.CutPrice = &cut
	}

	return doc, nil
}

func fromDocument(doc *productDocument) (*models.Product, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", doc.ID, err)
	}
	price, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return nil, fmt.Errorf("invalid stored price for %s: %w", doc.ID, err)
	}

	product := &models.Product{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		},
		SKU:              doc.SKU,
		Title:            doc.Title,
		Description:      doc.Description,
		ShortDescription: doc.ShortDescription,
		Price:            price,
		Discount:         doc.Discount,
		Stocks:           doc.Stocks,
		Categories:       doc.Categories,
		Subcategory:      doc.Subcategory,
		Tags:             pq.StringArray(nonNil(doc.Tags)),
		Image:            doc.Image,
		Thumbnail:        pq.StringArray(nonNil(doc.Thumbnail)),
		IsApproved:       doc.IsApproved,
	}

	if doc.CutPrice != nil {
		cut, err := decimal.NewFromString(doc.CutPrice.String())
		if err != nil {
			return nil, fmt.Errorf("invalid stored cutPrice for %s: %w", doc.ID, err)
		}
		product.CutPrice = decimal.NewNullDecimal(cut)
	}

	return product, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
