package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
)

// respondError converts a service error at the boundary. Taxonomy errors map
// to their status and stable code; anything else is an internal error whose
// detail stays out of the response body.
func respondError(c *gin.Context, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status, gin.H{"error": domainErr.Message, "code": domainErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": domain.CodeInternal})
}
