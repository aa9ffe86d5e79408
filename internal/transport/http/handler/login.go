package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"account-service/internal/domain"
	"account-service/internal/transport/http/ez"
	mdw "account-service/internal/transport/http/middleware"
)

type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// Login mounts /login: the password grant and a token self-check.
type Login struct {
	accounts Accounts
	tokens   TokenIssuer
	bearer   gin.HandlerFunc
}

func NewLogin(accounts Accounts, tokens TokenIssuer, bearer gin.HandlerFunc) *Login {
	return &Login{accounts: accounts, tokens: tokens, bearer: bearer}
}

func (h *Login) Priority() int { return 10 }

// username carries the email, matching the OAuth2 password form field names.
type accessTokenIn struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type accessTokenOut struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Login) MountAPI(api *gin.RouterGroup) {
	login := api.Group("/login")

	ez.RegisterAction(ez.New(login), ez.Action[accessTokenIn, accessTokenOut]{
		Method: http.MethodPost,
		Path:   "/access-token",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *accessTokenIn) (accessTokenOut, error) {
			u, err := h.accounts.Authenticate(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return accessTokenOut{}, ez.Internal("authenticate", err)
			}
			if u == nil {
				return accessTokenOut{}, ez.Unauthorized("incorrect email or password")
			}
			tok, exp, err := h.tokens.Issue(strconv.FormatUint(u.ID, 10))
			if err != nil {
				return accessTokenOut{}, ez.Internal("issue token failed", err)
			}
			return accessTokenOut{AccessToken: tok, TokenType: "bearer", ExpiresAt: exp}, nil
		},
	})

	ez.RegisterAction(ez.New(login.Group("", h.bearer)), ez.Action[struct{}, *domain.User]{
		Method: http.MethodPost,
		Path:   "/test-token",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return mdw.CurrentUser(c), nil
		},
	})
}
