package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"todoboard/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubVerifier map[string]string

func (s stubVerifier) UserID(raw string) (string, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(AuthMiddleware(stubVerifier{"a.b.c": "user-1"}, zap.NewNop()))
	engine.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, auth.UserID(c))
	})
	return engine
}

func TestAuthMiddlewareSetsUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	rec := httptest.NewRecorder()
	newAuthEngine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("unexpected user id: %s", rec.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	for _, header := range []string{"", "Bearer x.y.z", "Token a.b.c"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		newAuthEngine().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}
