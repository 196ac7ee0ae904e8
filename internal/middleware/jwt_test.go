package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sapta-dev/bimbel-admin-api/internal/models"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, role models.UserRole, expiry time.Duration) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: "user-1",
		Email:  "admin@bimbel.test",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/", handlers...)
	return router
}

func TestJWTAcceptsValidToken(t *testing.T) {
	router := protectedRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, time.Hour))

	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	router := protectedRouter()

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, recorder.Code)
		}
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	router := protectedRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, -time.Minute))

	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireRolesBlocksTeacherFromStaffRoute(t *testing.T) {
	router := protectedRouter(RequireRoles(models.RoleAdmin, models.RoleStaff))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleTeacher, time.Hour))
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleStaff, time.Hour))
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
