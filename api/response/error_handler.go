package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"storefront/api/ctxutil"
	"storefront/domain/shared"
	"storefront/pkg/errors"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError framework level failures such as binding errors
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := GetRequestID(c)

	logger.Warn(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.AbortWithStatusJSON(code, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleAppError maps any error onto a status and a safe client message.
// 5xx responses are logged at error level with a stack; 4xx at info.
func HandleAppError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	appErr := errors.FromDomainError(err)
	httpStatus := appErr.HTTPStatusCode()

	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Reason != "" {
		fields = append(fields, zap.String("reason", appErr.Reason))
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	var de *shared.DomainError
	if stdErrors.As(err, &de) && de.Cause != nil {
		fields = append(fields, zap.NamedError("cause", de.Cause))
	}

	log := logger.FromContext(ctxutil.WithRequestID(c))
	if httpStatus >= http.StatusInternalServerError {
		log.Error(appErr.Message, append(fields, zap.Strings("stack", extractStack(err)))...)
	} else {
		log.Info(appErr.Message, fields...)
	}

	userMessage := appErr.Message
	if appErr.Code == errors.CodeInternal {
		userMessage = "internal server error"
	}

	c.AbortWithStatusJSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Reason:    appErr.Reason,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// extractStack prefers the stack captured where a domain error was raised
func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
