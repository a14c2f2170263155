package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	v := StaticToken{Token: "atri"}

	require.NoError(t, v.Validate("atri"))
	assert.ErrorIs(t, v.Validate("wrong"), ErrUnauthorized)
	assert.ErrorIs(t, v.Validate(""), ErrUnauthorized)
}

func TestEmptyTokenRejectsEverything(t *testing.T) {
	v := StaticToken{}

	assert.Error(t, v.Validate(""))
	assert.Error(t, v.Validate("anything"))
}

func TestRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reached := false
	router := gin.New()
	router.POST("/launch/:id", Require(StaticToken{Token: "secret"}), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch/code", nil)
	req.Header.Set(Header, "nope")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid token"}`, rec.Body.String())
	assert.False(t, reached)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/launch/code", nil)
	req.Header.Set(Header, "secret")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
