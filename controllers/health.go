package controllers

import (
	"net/http"

	dbpkg "gymdesk/db"

	"github.com/gin-gonic/gin"
)

// GET /health
func Health(c *gin.Context) {
	if err := dbpkg.Ping(dbpkg.DBInstance(c)); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	RespondSuccess(c, gin.H{"status": "ok"})
}
