package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func newJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "accounts", TTL: time.Hour}
}

func authedEngine(j *auth.JWTer, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(AuthJWT(j, zap.NewNop()))
	r.Use(extra...)
	handler := func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, claims.ID)
	}
	r.GET("/me", handler)
	r.OPTIONS("/me", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAuthJWT(t *testing.T) {
	j := newJWTer()
	valid, err := j.Issue(auth.Identity{ID: "u1", Email: "a@x.com", Role: domain.RoleUser})
	require.NoError(t, err)
	foreign, err := (&auth.JWTer{Secret: []byte("other"), Issuer: "accounts"}).Issue(auth.Identity{ID: "u1"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"foreign secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
	}
	r := authedEngine(j)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", rec.Body.String())
			} else {
				assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestAuthJWT_OptionsBypass(t *testing.T) {
	r := authedEngine(newJWTer())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/me", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type stubStates map[string]domain.State

func (s stubStates) AccountState(_ context.Context, id string) (domain.State, error) {
	st, ok := s[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return st, nil
}

func TestRequireActive(t *testing.T) {
	j := newJWTer()
	states := stubStates{"active": domain.StateActive, "blocked": domain.StateBlocked}
	r := authedEngine(j, RequireActive(states, zap.NewNop()))

	cases := []struct {
		id     string
		status int
	}{
		{"active", http.StatusOK},
		{"blocked", http.StatusForbidden},
		{"deleted", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			tok, err := j.Issue(auth.Identity{ID: tc.id, Role: domain.RoleUser})
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(KeyRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(KeyRequestID))

	for _, bad := range []string{strings.Repeat("a", 129), "line\r\nbreak", "spaced id"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(KeyRequestID, bad)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		got := rec.Header().Get(KeyRequestID)
		assert.NotEqual(t, bad, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"message":"Gateway Timeout"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTimeout_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}

func TestMask(t *testing.T) {
	out := mask(map[string][]string{"Password": {"pw"}, "q": {"x"}})
	assert.Equal(t, []string{"****"}, out["Password"])
	assert.Equal(t, []string{"x"}, out["q"])
}
