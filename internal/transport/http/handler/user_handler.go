package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/domain"
	"user-account-service/internal/policy"
	"user-account-service/internal/service"
	httpez "user-account-service/internal/transport/http/ez"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error)
	Get(ctx context.Context, caller policy.Caller, id string) (*domain.Profile, error)
	List(ctx context.Context, caller policy.Caller) ([]domain.Profile, error)
	Ban(ctx context.Context, caller policy.Caller, id string) (*domain.Profile, error)
	Unban(ctx context.Context, caller policy.Caller, id string) (*domain.Profile, error)
}

type UserHandler struct{ svc UserService }

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

// SignUpIn is the sign-up body. Role and state are not accepted from clients.
type SignUpIn struct {
	Email    string `json:"email"    binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,maxbytes=72"`
	Name     string `json:"name"     binding:"required,notblank,max=64"`
	Birthday string `json:"birthday" binding:"required,datetime=2006-01-02"`
}

type SignInIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserURI struct {
	ID string `uri:"id" binding:"required"`
}

func callerOf(c *auth.Claims) policy.Caller {
	return policy.Caller{ID: c.ID, Role: c.Role}
}

func (h *UserHandler) SignUp(c *gin.Context, _ *auth.Claims, in *SignUpIn) (*service.AuthResult, error) {
	bday, err := time.Parse(domain.BirthdayLayout, in.Birthday)
	if err != nil {
		return nil, httpez.BadRequest("birthday must match 2006-01-02")
	}
	return h.svc.Register(c.Request.Context(), service.RegisterInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Birthday: bday,
	})
}

func (h *UserHandler) SignIn(c *gin.Context, _ *auth.Claims, in *SignInIn) (*service.AuthResult, error) {
	return h.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
}

func (h *UserHandler) Get(c *gin.Context, caller *auth.Claims, in *UserURI) (*domain.Profile, error) {
	return h.svc.Get(c.Request.Context(), callerOf(caller), in.ID)
}

func (h *UserHandler) List(c *gin.Context, caller *auth.Claims, _ *struct{}) ([]domain.Profile, error) {
	return h.svc.List(c.Request.Context(), callerOf(caller))
}

func (h *UserHandler) Ban(c *gin.Context, caller *auth.Claims, in *UserURI) (*domain.Profile, error) {
	return h.svc.Ban(c.Request.Context(), callerOf(caller), in.ID)
}

func (h *UserHandler) Unban(c *gin.Context, caller *auth.Claims, in *UserURI) (*domain.Profile, error) {
	return h.svc.Unban(c.Request.Context(), callerOf(caller), in.ID)
}
