package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gymdesk/members"
	"gymdesk/reports"
	"gymdesk/workers"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// RespondServiceError maps the service errors to HTTP status codes.
func RespondServiceError(c *gin.Context, err error) {
	var verr *members.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, members.ErrNotFound),
		errors.Is(err, reports.ErrReportNotFound),
		errors.Is(err, workers.ErrUnknownJob):
		RespondError(c, err.Error(), http.StatusNotFound)
	case errors.Is(err, reports.ErrFutureReportDate),
		errors.Is(err, reports.ErrInvalidMonth):
		RespondError(c, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "path", c.FullPath(), "err", err)
		RespondError(c, "erro interno", http.StatusInternalServerError)
	}
}
