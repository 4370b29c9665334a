package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/types/common"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "molprint.request_id"

// RequestID reuses the caller's X-Request-ID or assigns a new UUID, stores
// it on the context and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}

// Recovery turns a handler panic into a 500 envelope and logs the stack.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("panic recovered",
				logging.String("panic", fmt.Sprint(r)),
				logging.String("path", c.Request.URL.Path),
				logging.String("request_id", RequestIDFrom(c)),
				logging.String("stack", string(debug.Stack())))
			c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse(
				errors.ErrCodeInternal.String(),
				errors.DefaultMessageForCode(errors.ErrCodeInternal),
				RequestIDFrom(c), nil))
		}()
		c.Next()
	}
}

// HTTPObserver records served requests. *prometheus.FingerprintMetrics
// implements it.
type HTTPObserver interface {
	ObserveHTTP(method, route string, code int, elapsed time.Duration)
}

// Metrics records every request on obs under its route template so that
// path parameters do not explode label cardinality.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// BodyLimit caps request bodies at limit bytes. Reads past the limit fail
// with *http.MaxBytesError. A non-positive limit disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
