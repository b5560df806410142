package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "s3cret")
	t.Setenv("APP_DB_DRIVER", "memory")
	t.Setenv("APP_LIMITS_LOGINMAX", "3")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, "memory", c.DB.Driver)
	assert.Equal(t, 3, c.Limits.LoginMax)
	assert.Equal(t, "/api", c.App.HTTP.BasePath)
	assert.Equal(t, 24*time.Hour, c.JWT.TTL())
	assert.Equal(t, time.Minute, c.JWT.Leeway())
	assert.EqualValues(t, 10<<20, c.Upload.MaxBytes())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http:
    port: 9090
    basePath: /v2
jwt:
  secret: from-file
  accessTokenTTLMin: 5
db:
  driver: mysql
  dsn: mysql://root:pw@127.0.0.1:3306/perfume
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "/v2", c.App.HTTP.BasePath)
	assert.Equal(t, 5*time.Minute, c.JWT.TTL())
	assert.Equal(t, "mysql", c.DB.Driver)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWT: JWT{Secret: "x", AccessTokenTTLMin: 1},
		DB:  DB{Driver: "memory"},
		App: App{HTTP: HTTP{BasePath: "/api"}},
	}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWT.Secret = " "
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.DB.Driver = "sqlite"
	assert.Error(t, badDriver.Validate())

	noDSN := base
	noDSN.DB.Driver = "postgres"
	assert.Error(t, noDSN.Validate())
}
