package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth struct {
	user *domain.User
	err  error
	got  string
}

func (s *stubAuth) RequireAuthenticated(_ context.Context, token string) (*domain.User, error) {
	s.got = token
	return s.user, s.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerEngine(a Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", Bearer(a), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	return r
}

func TestBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		auth   *stubAuth
		status int
	}{
		{"missing header", "", &stubAuth{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubAuth{}, http.StatusUnauthorized},
		{"empty token", "Bearer  ", &stubAuth{}, http.StatusUnauthorized},
		{"forbidden", "Bearer t", &stubAuth{err: domain.ErrForbidden}, http.StatusForbidden},
		{"unknown user", "Bearer t", &stubAuth{err: domain.ErrNotFound}, http.StatusNotFound},
		{"store down", "Bearer t", &stubAuth{err: errors.New("db gone")}, http.StatusInternalServerError},
		{"ok", "bearer t", &stubAuth{user: &domain.User{ID: 7}}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(bearerEngine(tc.auth), req)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestBearer_SetsCurrentUser(t *testing.T) {
	a := &stubAuth{user: &domain.User{ID: 7}}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-123")

	w := serve(bearerEngine(a), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-123", a.got)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestCurrentUser_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"), "buckets are per client")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(504), body["code"])

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestMask(t *testing.T) {
	got := mask(map[string][]string{"Password": {"x"}, "q": {"y"}})
	assert.Equal(t, []string{"****"}, got["Password"])
	assert.Equal(t, []string{"y"}, got["q"])
}

func TestRequestID_ReplacesInvalid(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "has space")
	w := serve(r, req)
	assert.NotEqual(t, "has space", w.Header().Get(KeyRequestID))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1, 20*time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		if c.Query("hold") != "" {
			close(entered)
			<-release
		}
		c.Status(http.StatusOK)
	})

	done := make(chan int, 1)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/?hold=1", nil)).Code }()
	<-entered

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
