package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusOK,
		RequestID: GetRequestID(c),
	})
}

func HandleCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusCreated,
		RequestID: GetRequestID(c),
	})
}

// HandleList count is taken from the caller since data is untyped
func HandleList(c *gin.Context, data interface{}, count int, message string) {
	c.JSON(http.StatusOK, &ListResponse{
		Success:   true,
		Data:      data,
		Count:     count,
		Message:   message,
		Code:      http.StatusOK,
		RequestID: GetRequestID(c),
	})
}
