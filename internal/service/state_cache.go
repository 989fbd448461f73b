package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"user-account-service/internal/core/cache"
	"user-account-service/internal/domain"
)

type StateSource interface {
	AccountState(ctx context.Context, id string) (domain.State, error)
}

// CachedStates serves lifecycle lookups for the request guard from redis and
// falls through to next on a miss.
type CachedStates struct {
	cache *cache.Cache
	next  StateSource
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedStates(c *cache.Cache, next StateSource, ttl time.Duration, log *zap.Logger) *CachedStates {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStates{cache: c, next: next, ttl: ttl, log: log}
}

type stateEntry struct {
	State domain.State `json:"state"`
}

func stateKey(id string) string { return "account:state:" + id }

// AccountState serves from redis, loading from next on a miss. Unknown ids are
// cached too so a token for a missing account does not hit the store on every
// request.
func (s *CachedStates) AccountState(ctx context.Context, id string) (domain.State, error) {
	e, err := cache.GetOrLoadJSON(s.cache, ctx, stateKey(id), s.ttl, func(ctx context.Context) (*stateEntry, error) {
		st, err := s.next.AccountState(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, cache.ErrAbsent
		}
		if err != nil {
			return nil, err
		}
		return &stateEntry{State: st}, nil
	})
	if errors.Is(err, cache.ErrAbsent) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return e.State, nil
}

// RecordState writes a committed state change through to redis. On failure the
// key is dropped so the next lookup reloads from the store.
func (s *CachedStates) RecordState(ctx context.Context, id string, st domain.State) {
	err := cache.SetJSON(s.cache, ctx, stateKey(id), s.ttl, &stateEntry{State: st})
	if err == nil {
		return
	}
	s.log.Warn("state cache write failed", zap.String("user_id", id), zap.Error(err))
	if err := s.cache.Delete(ctx, stateKey(id)); err != nil {
		s.log.Warn("state cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}
