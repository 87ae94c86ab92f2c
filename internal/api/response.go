package api

import (
	"errors"
	"net/http"
	"strconv"

	"go-shop/internal/apperr"
	"go-shop/internal/auth"
	"go-shop/internal/paging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type listResponse struct {
	Message string      `json:"message"`
	Data    any         `json:"data"`
	Meta    paging.Meta `json:"meta"`
}

// respondError writes the response for err. notFound is the message used
// for apperr.ErrNotFound, e.g. "User not found".
func respondError(c *gin.Context, log logrus.FieldLogger, err error, notFound string) {
	if v, ok := apperr.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": v.Fields})
		return
	}
	switch {
	case errors.Is(err, errMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, apperr.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperr.ErrMediaUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
	case errors.Is(err, auth.ErrTokenIssuance):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
	case errors.Is(err, auth.ErrLogout):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("[API] request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	_ = c.Error(err)
}

// idParam parses the :id path segment. Anything but a positive integer
// cannot name a row, so it is reported as not found.
func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return paging.Normalize(page)
}
