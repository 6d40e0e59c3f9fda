// Package response holds the JSON envelope every HTTP answer of the service is wrapped in.
package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "Success"
	StatusFail    = "Fail"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{Status: StatusSuccess, Message: message, Data: data})
}

func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{Status: StatusFail, Message: message})
}

// Abort writes a failure envelope and stops the remaining handlers in the chain.
func Abort(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{Status: StatusFail, Message: message})
}
