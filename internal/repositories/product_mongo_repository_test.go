package repositories_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/javajoker/catalog-backend/internal/repositories"
)

// newMongoRepo connects to MONGO_TEST_URI and hands out a throwaway database.
func newMongoRepo(t *testing.T) *repositories.MongoProductRepository {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("catalog_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		db.Drop(context.Background())
		client.Disconnect(context.Background())
	})

	repo := repositories.NewMongoProductRepository(db.Collection(repositories.ProductsCollection))
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoProductRepository_Lifecycle(t *testing.T) {
	repo := newMongoRepo(t)
	ctx := context.Background()

	product := newProduct("Blue Shirt")
	product.SKU = strPtr("SKU-1")
	product.CutPrice = decimal.NewNullDecimal(decimal.RequireFromString("25.50"))
	product.Tags = pq.StringArray{"Cotton"}
	product.Thumbnail = pq.StringArray{"t1", "t2"}
	require.NoError(t, repo.Create(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, found.CutPrice.Decimal.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, []string{"t1", "t2"}, []string(found.Thumbnail))

	dup := newProduct("Other")
	dup.SKU = strPtr("SKU-1")
	assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicateSKU)

	require.NoError(t, repo.Create(ctx, newProduct("Red Pants")))

	products, total, err := repo.Search(ctx, repositories.ProductFilter{Query: "cotton"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Blue Shirt", products[0].Title)

	products, total, err = repo.Search(ctx, repositories.ProductFilter{Offset: 5, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, products)

	found.IsApproved = true
	require.NoError(t, repo.Update(ctx, found))
	public, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), repositories.ErrProductNotFound)
}
