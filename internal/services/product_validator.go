// internal/services/product_validator.go
package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// Multipart file fields a product submission may carry.
const (
	FileFieldImage     = "image"
	FileFieldThumbnail = "thumbnail"
)

// ProductSubmission is one Add or Update request: the text fields as sent and
// the uploaded files, spooled to local temporary paths, per field in upload order.
type ProductSubmission struct {
	Values url.Values
	Files  map[string][]string
}

// ProductInput holds the parsed, trimmed fields of a submission. A nil pointer
// means the field was not sent.
type ProductInput struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Price            *decimal.Decimal
	CutPrice         *decimal.Decimal
	Discount         *string
	Stocks           *int
	Categories       *string
	Subcategory      *string
	Tags             []string
	HasTags          bool
	SKU              *string

	Image      string
	Thumbnails []string
}

// ProductValidator checks submissions before anything is uploaded or written.
// Rules run in a fixed order and the first violation is reported.
type ProductValidator struct{}

func NewProductValidator() *ProductValidator {
	return &ProductValidator{}
}

// ValidateCreate applies the rules for a new product.
func (v *ProductValidator) ValidateCreate(sub *ProductSubmission) (*ProductInput, error) {
	if sub.isEmpty() {
		return nil, validationError("request body is missing or empty")
	}

	for _, field := range []string{"title", "description", "price", "stocks"} {
		raw, ok := sub.value(field)
		if !ok || utils.ValidateVar(raw, "notblank") != nil {
			return nil, validationError(field + " is required")
		}
	}

	if err := v.checkNumbers(sub); err != nil {
		return nil, err
	}

	images := sub.Files[FileFieldImage]
	if len(images) == 0 {
		return nil, validationError("image file is required")
	}
	if err := checkFileCounts(sub); err != nil {
		return nil, err
	}

	return sub.parse(), nil
}

// ValidateUpdate applies the same per-field rules to a partial update:
// nothing is required, but every field that is sent must be valid.
func (v *ProductValidator) ValidateUpdate(sub *ProductSubmission) (*ProductInput, error) {
	if sub.isEmpty() {
		return nil, validationError("request body is missing or empty")
	}

	for _, field := range []string{"title", "description", "price", "stocks"} {
		if raw, ok := sub.value(field); ok && utils.ValidateVar(raw, "notblank") != nil {
			return nil, validationError(field + " cannot be empty")
		}
	}

	if err := v.checkNumbers(sub); err != nil {
		return nil, err
	}

	if err := checkFileCounts(sub); err != nil {
		return nil, err
	}

	return sub.parse(), nil
}

func (v *ProductValidator) checkNumbers(sub *ProductSubmission) error {
	if raw, ok := sub.value("price"); ok && utils.ValidateVar(raw, "money") != nil {
		return validationError(moneyRule("price"))
	}
	if raw, ok := sub.value("stocks"); ok && utils.ValidateVar(raw, "nonneg_int") != nil {
		return validationError("stocks must be a whole number greater than or equal to 0")
	}
	if raw, ok := sub.value("cutPrice"); ok && strings.TrimSpace(raw) != "" &&
		utils.ValidateVar(raw, "money") != nil {
		return validationError(moneyRule("cutPrice"))
	}
	return nil
}

func moneyRule(field string) string {
	return field + " must be a number from 0 to " + utils.MaxMoney.StringFixed(utils.MoneyScale) +
		" with at most " + strconv.Itoa(utils.MoneyScale) + " decimal places"
}

func checkFileCounts(sub *ProductSubmission) error {
	if len(sub.Files[FileFieldImage]) > 1 {
		return validationError("only one image file is allowed")
	}
	if utils.ValidateVar(sub.Files[FileFieldThumbnail], "max="+strconv.Itoa(models.MaxThumbnails)) != nil {
		return validationError("at most " + strconv.Itoa(models.MaxThumbnails) + " thumbnail files are allowed")
	}
	return nil
}

func (s *ProductSubmission) isEmpty() bool {
	if s == nil {
		return true
	}
	for key, values := range s.Values {
		if key != "id" && len(values) > 0 {
			return false
		}
	}
	for _, paths := range s.Files {
		if len(paths) > 0 {
			return false
		}
	}
	return true
}

// value returns the first value sent for key.
func (s *ProductSubmission) value(key string) (string, bool) {
	values, ok := s.Values[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (s *ProductSubmission) text(key string) *string {
	raw, ok := s.value(key)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	return &trimmed
}

// parse converts already validated values.
func (s *ProductSubmission) parse() *ProductInput {
	in := &ProductInput{
		Title:            s.text("title"),
		Description:      s.text("description"),
		ShortDescription: s.text("shortDescription"),
		Discount:         s.text("discount"),
		Categories:       s.text("categories"),
		Subcategory:      s.text("subcategory"),
		SKU:              s.text("sku"),
	}

	if raw := s.text("price"); raw != nil {
		price := decimal.RequireFromString(*raw)
		in.Price = &price
	}
	if raw := s.text("cutPrice"); raw != nil && *raw != "" {
		cut := decimal.RequireFromString(*raw)
		in.CutPrice = &cut
	}
	if raw := s.text("stocks"); raw != nil {
		stocks, _ := strconv.Atoi(*raw)
		in.Stocks = &stocks
	}
	if in.SKU != nil && *in.SKU == "" {
		in.SKU = nil
	}

	plain, hasTags := s.Values["tags"]
	rawTags := append([]string{}, plain...)
	if bracketed, ok := s.Values["tags[]"]; ok {
		rawTags = append(rawTags, bracketed...)
		hasTags = true
	}
	if hasTags {
		in.HasTags = true
		in.Tags = []string{}
		for _, tag := range rawTags {
			if tag = strings.TrimSpace(tag); tag != "" {
				in.Tags = append(in.Tags, tag)
			}
		}
	}

	if images := s.Files[FileFieldImage]; len(images) > 0 {
		in.Image = images[0]
	}
	in.Thumbnails = s.Files[FileFieldThumbnail]

	return in
}
