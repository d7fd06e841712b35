package controllers

import (
	"gymdesk/members"
	"gymdesk/reports"
	"gymdesk/workers"

	"github.com/gin-gonic/gin"
)

const servicesKey = "services"

// Services are the back-office services the handlers call into.
type Services struct {
	Members *members.Service
	Reports *reports.Snapshotter
	Finance *reports.Finance
	Jobs    *workers.Runner
}

// SetServices makes s available to the handlers, like db.SetDBtoContext.
func SetServices(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(servicesKey, s)
		c.Next()
	}
}

func ServicesInstance(c *gin.Context) *Services {
	v, ok := c.Get(servicesKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Services)
	return s
}
