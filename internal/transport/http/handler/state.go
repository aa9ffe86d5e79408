package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"account-service/internal/domain"
	"account-service/internal/stream"
	"account-service/internal/transport/http/ez"
	mdw "account-service/internal/transport/http/middleware"
	resp "account-service/internal/transport/http/response"
)

type StateReader interface {
	Load() (stream.Snapshot, bool)
}

type StatePublisher interface {
	Publish(ctx context.Context, v any) error
}

type SuperuserGate interface {
	RequireSuperuser(u *domain.User) error
}

// State mounts /state: read the current snapshot, publish a new value.
// pub may be nil, in which case PUT answers 503.
type State struct {
	state  StateReader
	pub    StatePublisher
	gate   SuperuserGate
	bearer gin.HandlerFunc
}

func NewState(state StateReader, pub StatePublisher, gate SuperuserGate, bearer gin.HandlerFunc) *State {
	return &State{state: state, pub: pub, gate: gate, bearer: bearer}
}

func (h *State) Priority() int { return 30 }

type publishStateIn struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

func (h *State) MountAPI(api *gin.RouterGroup) {
	authed := ez.New(api.Group("/state", h.bearer))

	ez.RegisterAction(authed, ez.Action[struct{}, stream.Snapshot]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (stream.Snapshot, error) {
			snap, ok := h.state.Load()
			if !ok {
				return stream.Snapshot{}, ez.NotFound("state not initialized")
			}
			return snap, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[publishStateIn, gin.H]{
		Method: http.MethodPut,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusAccepted,
		Handler: func(c *gin.Context, in *publishStateIn) (gin.H, error) {
			if err := h.gate.RequireSuperuser(mdw.CurrentUser(c)); err != nil {
				return nil, err
			}
			if h.pub == nil {
				return nil, &ez.AErr{Code: resp.CodeUnavailable, Msg: "state publishing is disabled"}
			}
			if !json.Valid(in.Value) {
				return nil, ez.Unprocessable("value must be valid JSON")
			}
			if err := h.pub.Publish(c.Request.Context(), in.Value); err != nil {
				return nil, ez.Internal("publish state failed", err)
			}
			return gin.H{"published": true}, nil
		},
	})
}
