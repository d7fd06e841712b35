package db

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const dbKey = "db"

var ErrNoDatabase = errors.New("database not configured")

// Use este middleware no setup do gin
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, database)
		c.Next()
	}
}

func DBInstance(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// Ping checks that the connection behind database answers.
func Ping(database *gorm.DB) error {
	if database == nil {
		return ErrNoDatabase
	}
	return database.DB().Ping()
}
