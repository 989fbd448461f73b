package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-account-service/internal/core/server"
	"user-account-service/internal/domain"
	"user-account-service/internal/service"
	httpez "user-account-service/internal/transport/http/ez"
	"user-account-service/internal/transport/http/handler"
	mdw "user-account-service/internal/transport/http/middleware"
	"user-account-service/pkg/validation"
)

type Deps struct {
	Users  *handler.UserHandler
	Tokens mdw.TokenParser
	// States re-checks the caller's lifecycle state on authenticated routes;
	// nil trusts the token alone.
	States mdw.StateSource

	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	MaxInFlight    int64
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	validation.Init()
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}
	if d.MaxInFlight <= 0 {
		d.MaxInFlight = 300
	}

	r := server.NewRouter(server.Options{CORSOrigins: d.CORSOrigins})
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.ConcurrencyLimit(d.MaxInFlight),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Timeout(d.RequestTimeout),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mountUserActions(r.Group(""), l, d)
	return r
}

func mountUserActions(root *gin.RouterGroup, l *zap.Logger, d Deps) {
	public := httpez.New(root, l)

	httpez.RegisterAction(public, httpez.Action[handler.SignUpIn, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/sign-up",
		Binder:  httpez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User is created",
		Handler: d.Users.SignUp,
	})
	httpez.RegisterAction(public, httpez.Action[handler.SignInIn, *service.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/sign-in",
		Binder:  httpez.BindJSON,
		Message: "User is signed in",
		Handler: d.Users.SignIn,
	})

	authed := root.Group("")
	authed.Use(mdw.AuthJWT(d.Tokens, l))
	if d.States != nil {
		authed.Use(mdw.RequireActive(d.States, l))
	}
	users := httpez.New(authed, l)

	httpez.RegisterAction(users, httpez.Action[handler.UserURI, *domain.Profile]{
		Method:  http.MethodGet,
		Path:    "/users/:id",
		Binder:  httpez.BindURI,
		Auth:    true,
		Message: "User is found",
		Denied:  "You are not allowed to get this user",
		Handler: d.Users.Get,
	})
	httpez.RegisterAction(users, httpez.Action[struct{}, []domain.Profile]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "Users are found",
		Denied:  "You are not allowed to get all users",
		Handler: d.Users.List,
	})
	httpez.RegisterAction(users, httpez.Action[handler.UserURI, *domain.Profile]{
		Method:  http.MethodPut,
		Path:    "/users/:id/ban",
		Binder:  httpez.BindURI,
		Auth:    true,
		Message: "User is banned",
		Denied:  "You are not allowed to ban this user",
		Handler: d.Users.Ban,
	})
	httpez.RegisterAction(users, httpez.Action[handler.UserURI, *domain.Profile]{
		Method:  http.MethodPut,
		Path:    "/users/:id/unban",
		Binder:  httpez.BindURI,
		Auth:    true,
		Message: "User is unbanned",
		Denied:  "You are not allowed to unban this user",
		Handler: d.Users.Unban,
	})
}
