package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		icon := "➡️"
		switch {
		case status >= 500:
			icon = "❌"
		case status >= 400:
			icon = "⚠️"
		}

		propertyID, _ := c.Get(PropertyIDKey)
		staff := c.GetString(StaffUsernameKey)
		log.Printf("%s %s %s %d %s property=%v staff=%s ip=%s",
			icon, c.Request.Method, c.Request.URL.Path, status, latency, propertyID, staff, c.ClientIP())
	}
}
