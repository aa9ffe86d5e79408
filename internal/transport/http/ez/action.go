package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account-service/internal/domain"
	mdw "account-service/internal/transport/http/middleware"
	resp "account-service/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // 按 Content-Type 绑定（JSON 或表单）
	BindURI   Binder = "uri"   // 从路径参数绑定
	BindNone  Binder = "none"  // 不绑定
)

// AErr carries an HTTP code and a client-facing message; Err stays server-side.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error    { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error  { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error     { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error      { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Unprocessable(msg string) error { return &AErr{Code: resp.CodeUnprocessable, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Map turns a service error into an AErr.
func Map(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return &AErr{Code: resp.CodeConflict, Msg: domain.ErrDuplicateEmail.Error(), Err: err}
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrExpiredToken):
		return &AErr{Code: resp.CodeForbidden, Msg: "could not validate credentials", Err: err}
	case errors.Is(err, domain.ErrForbidden):
		return &AErr{Code: resp.CodeForbidden, Msg: "the user doesn't have enough privileges", Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: "not found", Err: err}
	case errors.Is(err, domain.ErrValidation):
		return &AErr{Code: resp.CodeUnprocessable, Msg: err.Error(), Err: err}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}

// Abort writes err as an error envelope and stops the chain.
func Abort(c *gin.Context, err error) {
	ae := Map(err)
	if ae.Code >= 500 {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(resp.Status(ae.Code), resp.Error(ae.Code, ae.Error()))
}

// Action is one endpoint: I is bound from the request, O is the data of the envelope.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool // 要求已登录（由 Bearer 中间件注入当前用户）
	Status  int  // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth && mdw.CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "not authenticated"))
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, resp.Error(resp.CodeUnprocessable, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Abort(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
