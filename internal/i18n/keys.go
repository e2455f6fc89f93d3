// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "internal_error"
	KeyRateLimited   = "rate_limited"
	KeyHealthOK      = "health.ok"
	KeyHealthFailed  = "health.unavailable"

	// Authentication
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidToken  = "auth.invalid_token"
	KeyAuthTokenExpired  = "auth.token_expired"
	KeyAdminAccessDenied = "admin.access_denied"

	// Products
	KeyProductCreated   = "product.created"
	KeyProductUpdated   = "product.updated"
	KeyProductDeleted   = "product.deleted"
	KeyProductApproved  = "product.approved"
	KeyProductFetched   = "product.fetched"
	KeyProductsFetched  = "product.list_fetched"
	KeyProductNotFound  = "product.not_found"
	KeyProductSKUExists = "product.sku_exists"
	KeyProductIDMissing = "product.id_required"

	// Search
	KeySearchNoResults    = "search.no_results"
	KeySearchResultsFound = "search.results_found"

	// File Upload
	KeyFileUploadFailed    = "file.upload_failed"
	KeyFileTooLarge        = "file.too_large"
	KeyFileUnexpectedField = "file.unexpected_field"
	KeyFileTooMany         = "file.too_many"
	KeyRequestMalformed    = "request.malformed"
)
