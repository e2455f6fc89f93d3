// internal/middleware/upload.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/utils"
)

const uploadedFilesKey = "uploaded_files"

// multipart parts above this size spill to disk
const multipartMemory = 8 << 20

// FileField declares a multipart file field and how many files it accepts.
type FileField struct {
	Name     string
	MaxCount int
}

// MultipartFiles parses a multipart body, saves every declared file into a
// per-request directory under tempDir and exposes the local paths, per field
// in upload order, through UploadedFiles. The directory is removed once the
// rest of the chain has run. Non-multipart requests pass through with no files.
func MultipartFiles(tempDir string, maxBodySize int64, fields ...FileField) gin.HandlerFunc {
	limits := make(map[string]int, len(fields))
	for _, f := range fields {
		limits[f.Name] = f.MaxCount
	}

	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		if maxBodySize > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		}

		if c.ContentType() != gin.MIMEMultipartPOSTForm {
			c.Set(uploadedFilesKey, map[string][]string{})
			c.Next()
			return
		}

		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, i18n.T(lang, i18n.KeyFileTooLarge))
				return
			}
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyRequestMalformed))
			return
		}
		form := c.Request.MultipartForm
		defer form.RemoveAll()

		for name, headers := range form.File {
			limit, declared := limits[name]
			if !declared {
				utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUnexpectedField, name))
				return
			}
			if len(headers) > limit {
				utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooMany, name, limit))
				return
			}
		}

		dir, err := os.MkdirTemp(tempDir, "submission-*")
		if err != nil {
			logrus.WithError(err).Error("Failed to create upload temp dir")
			utils.InternalErrorResponse(c, "")
			return
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				logrus.WithError(err).WithField("dir", dir).Warn("Failed to remove upload temp dir")
			}
		}()

		files := make(map[string][]string, len(form.File))
		for name, headers := range form.File {
			for i, header := range headers {
				dst := filepath.Join(dir, fmt.Sprintf("%s-%d%s", name, i, filepath.Ext(filepath.Base(header.Filename))))
				if err := c.SaveUploadedFile(header, dst); err != nil {
					logrus.WithError(err).WithField("field", name).Error("Failed to save uploaded file")
					utils.InternalErrorResponse(c, "")
					return
				}
				files[name] = append(files[name], dst)
			}
		}

		c.Set(uploadedFilesKey, files)
		c.Next()
	}
}

// UploadedFiles returns the files saved by MultipartFiles.
func UploadedFiles(c *gin.Context) map[string][]string {
	if v, exists := c.Get(uploadedFilesKey); exists {
		if files, ok := v.(map[string][]string); ok {
			return files
		}
	}
	return map[string][]string{}
}
