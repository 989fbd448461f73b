package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	glogger "gorm.io/gorm/logger"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/accounts?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/accounts?parseTime=true",
		},
		{
			name: "url form",
			in:   "mysql://root:pw@db:3306/accounts",
			want: "root:pw@tcp(db:3306)/accounts?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params translated",
			in:   "jdbc:mysql://db:3306/accounts?useSSL=false&characterEncoding=utf8&serverTimezone=UTC&useUnicode=true",
			user: "app",
			pass: "secret",
			want: "app:secret@tcp(db:3306)/accounts?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "override beats url credentials",
			in:   "mysql://root:pw@db/accounts?parseTime=false",
			user: "svc",
			want: "svc:pw@tcp(db)/accounts?charset=utf8mb4&parseTime=false",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db)/x", maskDSN("root:pw@tcp(db)/x"))
	assert.Equal(t, "host=db dbname=x", maskDSN("host=db dbname=x"))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, glogger.Silent, gormLogLevel("silent"))
	assert.Equal(t, glogger.Info, gormLogLevel("info"))
	assert.Equal(t, glogger.Warn, gormLogLevel(""))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "sqlite"}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}
