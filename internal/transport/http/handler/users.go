package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"account-service/internal/domain"
	"account-service/internal/transport/http/ez"
	mdw "account-service/internal/transport/http/middleware"
)

type Accounts interface {
	SignUp(ctx context.Context, in domain.NewUser) (*domain.User, error)
	CreateUser(ctx context.Context, actor *domain.User, in domain.NewUser) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	UpdateSelf(ctx context.Context, actor *domain.User, patch domain.ProfilePatch) (*domain.User, error)
	AdminUpdate(ctx context.Context, actor *domain.User, targetID uint64, patch domain.UserPatch) (*domain.User, error)
	GetByID(ctx context.Context, actor *domain.User, targetID uint64) (*domain.User, error)
	List(ctx context.Context, actor *domain.User, skip, limit int) ([]domain.User, error)
}

// Users mounts /users.
type Users struct {
	accounts Accounts
	bearer   gin.HandlerFunc
}

func NewUsers(accounts Accounts, bearer gin.HandlerFunc) *Users {
	return &Users{accounts: accounts, bearer: bearer}
}

func (h *Users) Priority() int { return 20 }

type createUserIn struct {
	Email       string `json:"email"        binding:"required,email,max=255"`
	Password    string `json:"password"     binding:"required,min=8,max=72"`
	Name        string `json:"name"         binding:"omitempty,max=128"`
	IsSuperuser bool   `json:"is_superuser"`
}

type openUserIn struct {
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"     binding:"omitempty,max=128"`
}

type updateMeIn struct {
	Email    *string `json:"email"    binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Name     *string `json:"name"     binding:"omitempty,max=128"`
}

func (in updateMeIn) patch() domain.ProfilePatch {
	return domain.ProfilePatch{Email: in.Email, Password: in.Password, Name: in.Name}
}

type updateUserIn struct {
	updateMeIn
	IsSuperuser *bool `json:"is_superuser"`
}

type listUsersQ struct {
	Skip  int `form:"skip"  binding:"min=0"`
	Limit int `form:"limit" binding:"min=0,max=100"`
}

func (h *Users) MountAPI(api *gin.RouterGroup) {
	users := api.Group("/users")
	public := ez.New(users)
	authed := ez.New(users.Group("", h.bearer))

	// 公开注册
	ez.RegisterAction(public, ez.Action[openUserIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/open",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *openUserIn) (*domain.User, error) {
			return h.accounts.SignUp(c.Request.Context(), domain.NewUser{
				Email: in.Email, Password: in.Password, Name: in.Name,
			})
		},
	})

	// 管理员创建
	ez.RegisterAction(authed, ez.Action[createUserIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createUserIn) (*domain.User, error) {
			return h.accounts.CreateUser(c.Request.Context(), mdw.CurrentUser(c), domain.NewUser{
				Email: in.Email, Password: in.Password, Name: in.Name, IsSuperuser: in.IsSuperuser,
			})
		},
	})

	ez.RegisterAction(authed, ez.Action[listUsersQ, []domain.User]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listUsersQ) ([]domain.User, error) {
			return h.accounts.List(c.Request.Context(), mdw.CurrentUser(c), in.Skip, in.Limit)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return mdw.CurrentUser(c), nil
		},
	})

	ez.RegisterAction(authed, ez.Action[updateMeIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateMeIn) (*domain.User, error) {
			return h.accounts.UpdateSelf(c.Request.Context(), mdw.CurrentUser(c), in.patch())
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			return h.accounts.GetByID(c.Request.Context(), mdw.CurrentUser(c), id)
		},
	})

	ez.RegisterAction(authed, ez.Action[updateUserIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateUserIn) (*domain.User, error) {
			id, err := pathID(c)
			if err != nil {
				return nil, err
			}
			return h.accounts.AdminUpdate(c.Request.Context(), mdw.CurrentUser(c), id, domain.UserPatch{
				ProfilePatch: in.patch(),
				IsSuperuser:  in.IsSuperuser,
			})
		},
	})
}

func pathID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ez.Unprocessable("id must be a positive integer")
	}
	return id, nil
}
