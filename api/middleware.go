package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "requestID"
	ctxClaims    = "claims"
)

// requestID tags every request with a ULID, reusing one sent by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = ulid.Make().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(ctxRequestID)),
		}
		if claims := currentUser(c); claims != nil {
			attrs = append(attrs, slog.String("user", claims.Username))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(c.Request.Context(), "request", append(attrs, slog.String("errors", c.Errors.String()))...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(c.Request.Context(), "request", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}

func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, p any) {
		logger.ErrorContext(c.Request.Context(), "panic",
			slog.Any("panic", p), slog.String("request_id", c.GetString(ctxRequestID)))
		abortWithError(c, fmt.Errorf("panic: %v", p))
	})
}

// authenticateJWT stores the claims of a valid bearer token on the context.
// A missing or invalid token is not an error here; the role gates decide.
func authenticateJWT(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			token, ok = strings.CutPrefix(header, "bearer ")
		}
		if ok && token != "" {
			if claims, err := tokens.Verify(strings.TrimSpace(token)); err == nil {
				c.Set(ctxClaims, claims)
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

var errUnauthorized = db.Unauthorizedf("unauthorized")

func ensureLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			abortWithError(c, errUnauthorized)
			return
		}
		c.Next()
	}
}

func ensureAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := currentUser(c); u == nil || !u.IsAdmin {
			abortWithError(c, errUnauthorized)
			return
		}
		c.Next()
	}
}

// ensureCorrectUserOrAdmin lets admins through, and users acting on their
// own :username.
func ensureCorrectUserOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || !(u.IsAdmin || u.Username == c.Param("username")) {
			abortWithError(c, errUnauthorized)
			return
		}
		c.Next()
	}
}
