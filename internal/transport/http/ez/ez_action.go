// Package ez registers JSON actions on a gin router group: bind and validate
// the input, run the handler with the verified caller, map errors to HTTP
// statuses and wrap the result in the response envelope.
package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/domain"
	mdw "user-account-service/internal/transport/http/middleware"
	resp "user-account-service/internal/transport/http/response"
	"user-account-service/pkg/validation"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

// Binder selects where the action input comes from.
type Binder string

const (
	BindJSON Binder = "json"
	BindURI  Binder = "uri"
	BindNone Binder = "none"
)

// AErr carries an explicit HTTP status for a handler failure.
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

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Action describes one endpoint. I is the bound input, O the response data.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool   // require verified claims on the request context
	Status  int    // success status, 200 when zero
	Message string // success message
	Denied  string // message for policy denials
	Handler func(c *gin.Context, caller *auth.Claims, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var caller *auth.Claims
		if a.Auth {
			cl, ok := auth.ClaimsFrom(c.Request.Context())
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, ""))
				return
			}
			caller = cl
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		default:
		}
		if bindErr != nil {
			e.log.Info("invalid request",
				zap.String("path", c.FullPath()),
				zap.String("rid", c.GetString(mdw.KeyRequestID)),
				zap.Error(bindErr),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Invalid(validation.ToDetails(bindErr)))
			return
		}

		out, err := a.Handler(c, caller, &in)
		if err != nil {
			status, msg := StatusOf(err)
			if status == http.StatusForbidden && a.Denied != "" && errors.Is(err, domain.ErrForbidden) {
				msg = a.Denied
			}
			e.logFailure(c, status, err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, resp.Error(status, msg))
			return
		}

		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(a.Message, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func (e EZ) logFailure(c *gin.Context, status int, err error) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("rid", c.GetString(mdw.KeyRequestID)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed", fields...)
		return
	}
	e.log.Warn("request rejected", fields...)
}

// StatusOf maps an error to the HTTP status and client message. Messages for
// 5xx never include error details.
func StatusOf(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= http.StatusInternalServerError {
			return ae.Code, resp.MsgFor(ae.Code)
		}
		return ae.Code, ae.Error()
	}
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, resp.MsgFor(http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, resp.MsgFor(http.StatusForbidden)
	case errors.Is(err, domain.ErrAccountBlocked):
		return http.StatusForbidden, domain.ErrAccountBlocked.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, domain.ErrEmailTaken.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp.MsgFor(http.StatusGatewayTimeout)
	default:
		return http.StatusInternalServerError, resp.MsgFor(http.StatusInternalServerError)
	}
}
