package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-shop/internal/dbtest"
	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupMiddlewareRouter(t *testing.T) (*gin.Engine, *TokenService, *user.User) {
	t.Helper()
	svc, _, u := newTokenService(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(svc, quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		me, ok := UserFromContext(c.Request.Context())
		if !ok {
			c.String(500, "no user")
			return
		}
		c.String(200, me.Email)
	})
	return r, svc, u
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r, _, _ := setupMiddlewareRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r, _, _ := setupMiddlewareRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.jwt")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid JWT, got %d", w.Code)
	}
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	r, svc, u := setupMiddlewareRouter(t)
	token, _ := svc.Issue(u)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != u.Email {
		t.Errorf("expected 200 with %q, got %d %q", u.Email, w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	r, svc, u := setupMiddlewareRouter(t)
	token, _ := svc.Issue(u)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 using cookie token, got %d", w.Code)
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	r, svc, u := setupMiddlewareRouter(t)
	token, _ := svc.Issue(u)
	if err := svc.Invalidate(t.Context(), token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", w.Code)
	}
}

func TestAuthMiddleware_RedisDownIsServerError(t *testing.T) {
	conn := dbtest.Open(t)
	rdb, mr := dbtest.Redis(t)
	u := dbtest.SeedUser(t, conn, "Ana", "ana@example.com", "secret1", user.RoleUser)
	svc := NewTokenService(testSecret, time.Hour, rdb, user.NewStore(conn))
	token, _ := svc.Issue(&u)
	mr.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(svc, quietLogger()))
	r.GET("/test", func(c *gin.Context) { c.String(200, "OK") })
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when revocation list is unreachable, got %d", w.Code)
	}
}
