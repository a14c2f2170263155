// Package auth validates the shared launch token.
package auth

import (
	"crypto/subtle"
	"net/http"

	"codeberg.org/mutker/hostctl/internal/errors"
	"github.com/gin-gonic/gin"
)

// Header carries the shared secret.
const Header = "X-Launch-Token"

var ErrUnauthorized = errors.New().WithMessage(errors.ErrUnauthorized, "invalid token")

// Validator validates an authentication token.
type Validator interface {
	Validate(token string) error
}

// StaticToken is a validator for a single shared token. An empty token
// rejects everything.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Require aborts with 403 unless the request carries a valid token.
func Require(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.Validate(c.GetHeader(Header)); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "invalid token"})
			return
		}
		c.Next()
	}
}
