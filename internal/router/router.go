// internal/router/router.go
package router

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/handlers"
	"github.com/javajoker/catalog-backend/internal/middleware"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/repositories"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// Initialize builds the HTTP engine. Background work started for the
// middleware (rate limiter janitors) stops when ctx is done. events may be nil.
func Initialize(ctx context.Context, cfg *config.Config, repo repositories.ProductRepository, assets services.AssetStore, events services.EventPublisher) *gin.Engine {
	// Initialize services
	productService := services.NewProductService(repo, assets, events)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	healthHandler := handlers.NewHealthHandler(repo)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	if cfg.RateLimit.GeneralPerSecond > 0 {
		r.Use(middleware.GeneralRateLimit(ctx, float64(cfg.RateLimit.GeneralPerSecond), cfg.RateLimit.GeneralBurst))
	}

	// Health check
	r.GET("/health", healthHandler.Check)

	// Multipart submissions
	uploads := []gin.HandlerFunc{
		middleware.MultipartFiles(cfg.Storage.TempDir, cfg.Server.MaxUploadSize,
			middleware.FileField{Name: services.FileFieldImage, MaxCount: 1},
			middleware.FileField{Name: services.FileFieldThumbnail, MaxCount: models.MaxThumbnails},
		),
	}
	if cfg.RateLimit.UploadsPerMinute > 0 {
		uploads = append([]gin.HandlerFunc{middleware.UploadRateLimit(ctx, cfg.RateLimit.UploadsPerMinute, cfg.RateLimit.UploadBurst)}, uploads...)
	}

	// Public catalog routes
	r.GET("/products", middleware.OptionalAuth(), productHandler.GetProducts)
	r.GET("/product", productHandler.GetProduct)
	r.GET("/searchproduct", middleware.OptionalAuth(), productHandler.SearchProducts)

	// Admin routes
	admin := r.Group("")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/add", withUploads(uploads, productHandler.AddProduct)...)
		admin.PATCH("/update", withUploads(uploads, productHandler.UpdateProduct)...)
		admin.DELETE("/delete", productHandler.DeleteProduct)
		admin.PATCH("/Aprove", productHandler.ApproveProduct)
	}

	// Locally stored assets
	if cfg.Storage.Driver == "local" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	return r
}

func withUploads(uploads []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(uploads)+1)
	chain = append(chain, uploads...)
	return append(chain, handler)
}
