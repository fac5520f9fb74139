// Package response maps service results and typed errors onto HTTP responses.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staynest/service-booking/internal/apperr"
)

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps a typed application error onto its HTTP status. Timeout and
// storage failures come back 503 so clients know a retry is safe.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindInvalidRange, apperr.KindSelfBooking, apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict, apperr.KindInvalidTransition:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusForbidden
	case apperr.KindTimeout, apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"error": err.Error()}
	if kind := apperr.KindOf(err); kind != "" {
		body["code"] = string(kind)
	}
	c.JSON(status, body)
}
