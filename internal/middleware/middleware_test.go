package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"eventhub-be/internal/credentials"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/jwt"
	"eventhub-be/internal/models"
	"eventhub-be/internal/service"
	"eventhub-be/internal/testing/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router *gin.Engine
	jwt    *jwt.JWTService
	token  string
	userID string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	jwtService, err := jwt.NewJWTService("test-secret")
	require.NoError(t, err)
	authService := service.NewAuthService(memstore.NewUsers(), credentials.NewBcryptHasher(bcrypt.MinCost), jwtService)

	resp, err := authService.Register(context.Background(), &models.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(authService), func(c *gin.Context) {
		id, ok := identity.FromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, id)
	})
	return &authFixture{router: r, jwt: jwtService, token: resp.Token, userID: resp.ID}
}

func (f *authFixture) do(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do("Bearer " + f.token)

	require.Equal(t, http.StatusOK, w.Code)
	var id identity.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
	assert.Equal(t, f.userID, id.ID)
	assert.Equal(t, "Ada", id.Name)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	f := newAuthFixture(t)
	orphan, err := f.jwt.GenerateToken("1f0c7e8a-59d1-4a49-b7c9-1b6a2f3e4d5c")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Not authorized, no token"},
		{"wrong scheme", "Basic " + f.token, "Not authorized, no token"},
		{"empty bearer", "Bearer ", "Not authorized, no token"},
		{"bad token", "Bearer not.a.jwt", "Not authorized, token failed"},
		{"unknown user", "Bearer " + orphan, "Not authorized, user not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.want, message(t, w))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "hi") })

	for _, path := range []string{"/health", "/missing", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/missing", entries[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["code"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", message(t, w))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	// A second registration must reuse the existing collectors.
	require.NotPanics(t, func() { NewMetrics(reg) })

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `eventhub_http_requests_total{code="200",method="GET",route="/events/:id"} 2`)
	assert.Contains(t, string(body), `eventhub_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
}
