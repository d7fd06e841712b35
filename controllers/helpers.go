package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" é obrigatório", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, name+" inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// ParamInt reads a positive integer path parameter.
func ParamInt(c *gin.Context, name string) (int, bool) {
	id, ok := ParamID(c, name)
	return int(id), ok
}

// ParseDate accepts YYYY-MM-DD. Empty input gives the zero time.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, v)
}

// ParamDate reads a YYYY-MM-DD path parameter.
func ParamDate(c *gin.Context, name string) (time.Time, bool) {
	d, err := ParseDate(c.Param(name))
	if err != nil || d.IsZero() {
		RespondError(c, name+" inválido (use AAAA-MM-DD)", http.StatusBadRequest)
		return time.Time{}, false
	}
	return d, true
}
