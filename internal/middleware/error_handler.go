package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"grifopos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler answers an opaque 500 for errors attached with c.Error. The
// wrapped chain (driver errors included) only reaches the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		reqID := c.GetString(RequestIDKey)
		for _, e := range c.Errors {
			log.Error().
				Str("request_id", reqID).
				Str("route", c.FullPath()).
				Str("method", c.Request.Method).
				Err(e.Err).
				Msg("unhandled error")
		}
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno(reqID))
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			reqID := c.GetString(RequestIDKey)
			log.Error().
				Str("request_id", reqID).
				Str("route", c.FullPath()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno(reqID))
		}()
		c.Next()
	}
}

// silenciosas are polled by health checkers and scrapers; they log at debug level.
var silenciosas = map[string]bool{"/health": true, "/metrics": true}

// Logger writes one structured line per request: 5xx at error, 4xx at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		case silenciosas[c.FullPath()]:
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		if claims := GetClaims(c); claims != nil {
			ev = ev.Str("user_id", claims.Usuario()).Str("rol", claims.Rol)
		}
		ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
