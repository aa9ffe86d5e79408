package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"account-service/internal/core/server"
	"account-service/internal/service"
	"account-service/internal/stream"
	"account-service/internal/transport/http/handler"
	mdw "account-service/internal/transport/http/middleware"
)

type Deps struct {
	Log       *zap.Logger
	Accounts  handler.Accounts
	Policy    *service.Policy
	Tokens    handler.TokenIssuer
	State     handler.StateReader
	Publisher handler.StatePublisher // nil 表示未开启发布
	Phase     func() stream.Phase    // nil 表示未启用消费者

	APIPrefix      string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.APIPrefix == "" {
		d.APIPrefix = "/api/v1"
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}

	r := server.NewRouter(d.Log, d.CORSOrigins)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(1000, 2000),
		mdw.RateLimitPerIP(50, 100, 10*time.Minute),
		mdw.ConcurrencyLimit(300, time.Second),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(d.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		h := gin.H{"ok": 1}
		if d.Phase != nil {
			h["state"] = d.Phase().String()
		}
		c.JSON(http.StatusOK, h)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bearer := mdw.Bearer(d.Policy)

	var reg Registry
	reg.Register(
		handler.NewLogin(d.Accounts, d.Tokens, bearer),
		handler.NewUsers(d.Accounts, bearer),
		handler.NewState(d.State, d.Publisher, d.Policy, bearer),
	)
	reg.MountAll(r.Group(d.APIPrefix))
	return r
}
