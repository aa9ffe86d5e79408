package ez

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"account-service/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func TestMap(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrDuplicateEmail, 409, "a user with this email already exists"},
		{fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrExpiredToken), 403, "could not validate credentials"},
		{fmt.Errorf("x: %w", domain.ErrForbidden), 403, "the user doesn't have enough privileges"},
		{domain.ErrNotFound, 404, "not found"},
		{fmt.Errorf("%w: email required", domain.ErrValidation), 422, "validation error: email required"},
		{errors.New("boom"), 500, "internal error"},
		{NotFound("state not initialized"), 404, "state not initialized"},
	}
	for _, tc := range cases {
		ae := Map(tc.err)
		assert.Equal(t, tc.code, ae.Code, tc.err.Error())
		assert.Equal(t, tc.msg, ae.Error(), tc.err.Error())
	}
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func TestRegisterAction(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/v1"))
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(_ *gin.Context, in *echoIn) (gin.H, error) {
			if in.Name == "dup" {
				return nil, domain.ErrDuplicateEmail
			}
			return gin.H{"name": in.Name}, nil
		},
	})
	RegisterAction(e, Action[struct{}, string]{
		Method:  http.MethodGet,
		Path:    "/private",
		Auth:    true,
		Handler: func(*gin.Context, *struct{}) (string, error) { return "secret", nil },
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"name":"ann"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{"name":"ann"}}`, w.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, post(`{}`).Code)
	assert.Equal(t, http.StatusConflict, post(`{"name":"dup"}`).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
