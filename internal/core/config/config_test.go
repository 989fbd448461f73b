package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
jwt:
  secret: s3cret
db:
  driver: memory
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "0.0.0.0", c.App.HTTP.Host)
	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, 3*time.Hour, c.TokenTTL())
	assert.Equal(t, 10*time.Second, c.RequestTimeout())
	assert.True(t, c.Auth.EnforceActiveState)
	assert.Empty(t, c.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeYAML(t, "jwt:\n  secret: from-file\ndb:\n  driver: memory\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_JWT_TTL_MIN", "60")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, time.Hour, c.TokenTTL())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "x")
	t.Setenv("APP_DB_DRIVER", "memory")

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", c.DB.Driver)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory", Config{JWT: JWT{Secret: "k"}, DB: DB{Driver: "memory"}}, true},
		{"postgres with dsn", Config{JWT: JWT{Secret: "k"}, DB: DB{Driver: "postgres", DSN: "host=db"}}, true},
		{"no secret", Config{DB: DB{Driver: "memory"}}, false},
		{"blank secret", Config{JWT: JWT{Secret: "  "}, DB: DB{Driver: "memory"}}, false},
		{"unknown driver", Config{JWT: JWT{Secret: "k"}, DB: DB{Driver: "sqlite"}}, false},
		{"mongo without dsn", Config{JWT: JWT{Secret: "k"}, DB: DB{Driver: "mongo"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
