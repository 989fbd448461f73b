package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrAbsent may be returned by a GetOrLoadJSON loader to record that the
// value does not exist. The absence is cached like any other value and
// reported back as ErrAbsent.
var ErrAbsent = errors.New("cache: value absent")

const absent = "null"

func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if errors.Is(e, ErrAbsent) {
			return []byte(absent), nil
		}
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == absent {
		return nil, ErrAbsent
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}

func SetJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, v *T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}
