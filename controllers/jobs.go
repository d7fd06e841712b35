package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/jobs
func ListJobs(c *gin.Context) {
	s := ServicesInstance(c)
	if s == nil || s.Jobs == nil {
		RespondError(c, "jobs não configurados", http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"jobs": s.Jobs.Names()})
}

// POST /api/jobs/:name
// Lets an external scheduler (cron) trigger a job instead of the built-in tickers.
func RunJob(c *gin.Context) {
	s := ServicesInstance(c)
	if s == nil || s.Jobs == nil {
		RespondError(c, "jobs não configurados", http.StatusInternalServerError)
		return
	}

	name := c.Param("name")
	out, err := s.Jobs.Run(c.Request.Context(), name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"job": name, "result": out})
}
