// Package handler implements the HTTP handlers for the routing and
// management endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/routererrors"
)

// errorResponse sends a JSON error response with {detail: message} format.
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

// domainError maps a domain error to its HTTP status. Only the taxonomy
// message is exposed; wrapped causes stay in the logs.
func domainError(c *gin.Context, err error) {
	status := routererrors.HTTPStatus(err)

	var de *routererrors.DomainError
	if errors.As(err, &de) && status != http.StatusInternalServerError {
		errorResponse(c, status, de.Message)
		return
	}
	errorResponse(c, status, "internal server error")
}
