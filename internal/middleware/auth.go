package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	ierr "payment-api/internal/errors"
	"payment-api/internal/response"
	"payment-api/pkg/logging"
)

const principalKey = "user_id"

// ClaimsMiddleware extracts the caller's principal id from the bearer token's
// "sub" claim. When secret is empty the token is assumed to be verified by the
// upstream authorizer and is only decoded. Requests without a token continue
// anonymously; handlers decide whether a principal is required.
func ClaimsMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		subject, err := subjectFromToken(token, secret)
		if err != nil {
			logging.Warnw("rejected bearer token", "path", c.Request.URL.Path, "error", err)
			response.ErrorJSON(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(principalKey, subject)
		c.Next()
	}
}

// PrincipalID returns the authenticated principal, or an empty string
func PrincipalID(c *gin.Context) string {
	return c.GetString(principalKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func subjectFromToken(token, secret string) (string, error) {
	claims := jwt.MapClaims{}

	if secret == "" {
		if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
			return "", ierr.WithError(err).WithHint("Token parse error").Mark(ierr.ErrUnauthorized)
		}
	} else {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			return "", ierr.WithError(err).WithHint("Token parse error").Mark(ierr.ErrUnauthorized)
		}
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", ierr.NewError("token missing subject").Mark(ierr.ErrUnauthorized)
	}
	return subject, nil
}

// AdminAuthMiddleware guards operator routes with a shared API key
func AdminAuthMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if adminKey == "" {
			response.ErrorJSON(c, http.StatusServiceUnavailable, "Admin API is not configured")
			c.Abort()
			return
		}
		if apiKey == "" {
			response.ErrorJSON(c, http.StatusUnauthorized, "Missing api_key")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminKey)) != 1 {
			response.ErrorJSON(c, http.StatusUnauthorized, "Invalid api_key")
			c.Abort()
			return
		}

		c.Set("admin", true)
		c.Next()
	}
}
