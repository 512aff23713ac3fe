package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

// JSONError writes {"error": {"code", "message", "details"}}. details is
// omitted when nil.
func JSONError(c *gin.Context, code int, errCode, message string, details interface{}) {
	body := gin.H{
		"code":    errCode,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(code, gin.H{"error": body})
}
