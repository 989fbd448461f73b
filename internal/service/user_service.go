package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/domain"
	"user-account-service/internal/policy"
	"user-account-service/pkg/utils"
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// StateRecorder is told about every committed lifecycle change so cached
// copies follow the store.
type StateRecorder interface {
	RecordState(ctx context.Context, id string, st domain.State)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Birthday time.Time
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	domain.Profile
	Token string `json:"token"`
}

type UserService struct {
	repo   domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger
	states StateRecorder
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

func (s *UserService) SetStateRecorder(r StateRecorder) { s.states = r }

func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register creates a USER account in the ACTIVE state and signs a token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := s.create(ctx, in, domain.RoleUser)
	if err != nil {
		recordEvent("sign_up", err)
		return nil, err
	}
	res, err := s.issue(u)
	recordEvent("sign_up", err)
	return res, err
}

// CreateAdmin provisions an ADMIN account. It is only reachable from the
// admin CLI; sign-up never grants ADMIN.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*domain.Profile, error) {
	u, err := s.create(ctx, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

// Promote grants ADMIN to an existing account.
func (s *UserService) Promote(ctx context.Context, email string) (*domain.Profile, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, u.ID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	u.Role = domain.RoleAdmin
	s.log.Info("user promoted", zap.String("user_id", u.ID))
	p := u.Profile()
	return &p, nil
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	switch {
	case in.Birthday.IsZero():
		return nil, fmt.Errorf("%w: birthday is required", domain.ErrInvalidInput)
	case len(in.Password) > utils.MaxPasswordBytes:
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, utils.MaxPasswordBytes)
	}
	email := NormalizeEmail(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Birthday:     in.Birthday,
		PasswordHash: hash,
		Role:         role,
		State:        domain.StateActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Authenticate checks credentials and signs a fresh token. Blocked accounts
// cannot sign in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	res, err := s.authenticate(ctx, email, password)
	recordEvent("sign_in", err)
	return res, err
}

func (s *UserService) authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if u.State == domain.StateBlocked {
		return nil, domain.ErrAccountBlocked
	}
	return s.issue(u)
}

func (s *UserService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Profile: u.Profile(), Token: tok}, nil
}

func (s *UserService) Get(ctx context.Context, caller policy.Caller, id string) (*domain.Profile, error) {
	if err := policy.Authorize(caller, policy.ActionReadUser, id); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

func (s *UserService) List(ctx context.Context, caller policy.Caller) ([]domain.Profile, error) {
	if err := policy.Authorize(caller, policy.ActionListUsers, ""); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

// Ban blocks the account. Repeating it on a blocked account succeeds and
// leaves the record untouched.
func (s *UserService) Ban(ctx context.Context, caller policy.Caller, id string) (p *domain.Profile, err error) {
	defer func() { recordEvent("ban", err) }()
	if err = policy.Authorize(caller, policy.ActionBanUser, id); err != nil {
		return nil, err
	}
	return s.moveTo(ctx, caller, id, domain.StateBlocked)
}

func (s *UserService) Unban(ctx context.Context, caller policy.Caller, id string) (p *domain.Profile, err error) {
	defer func() { recordEvent("unban", err) }()
	if err = policy.Authorize(caller, policy.ActionUnbanUser, id); err != nil {
		return nil, err
	}
	return s.moveTo(ctx, caller, id, domain.StateActive)
}

func (s *UserService) moveTo(ctx context.Context, caller policy.Caller, id string, target domain.State) (*domain.Profile, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := u.State.Transition(target)
	if err != nil {
		return nil, err
	}
	if next != u.State {
		if err := s.repo.UpdateState(ctx, id, next); err != nil {
			return nil, err
		}
		if s.states != nil {
			s.states.RecordState(ctx, id, next)
		}
		s.log.Info("user state changed",
			zap.String("user_id", id),
			zap.String("actor_id", caller.ID),
			zap.String("from", string(u.State)),
			zap.String("to", string(next)),
		)
		u.State = next
	}
	p := u.Profile()
	return &p, nil
}

// AccountState reports the current lifecycle state of a user.
func (s *UserService) AccountState(ctx context.Context, id string) (domain.State, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.State, nil
}
