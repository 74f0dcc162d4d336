package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

// respondError maps an AppError code to an HTTP status and writes the
// human-readable message. Unknown errors are generic server errors.
func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": errorMessage(err)})
}

func errorStatus(err error) int {
	switch {
	case domainErrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case domainErrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			return appErr.Message + ": " + appErr.Err.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
