// internal/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// respondError maps a service error kind to its status code. Causes of
// upload and internal failures are logged, never returned.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	_ = c.Error(err)

	switch services.KindOf(err) {
	case services.ErrKindValidation:
		// the message names the first rule the submission broke
		utils.BadRequestResponse(c, err.Error())
	case services.ErrKindNotFound:
		utils.NotFoundResponse(c, "product")
	case services.ErrKindConflict:
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductSKUExists))
	case services.ErrKindUpload:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Asset upload failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, i18n.T(lang, i18n.KeyFileUploadFailed))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}
