package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ParseDBConnString(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Database
		expectErr bool
	}{
		{name: "inmem", input: "inmem", expect: Database{Type: DatabaseInMemory}},
		{name: "sqlite with dir", input: "sqlite:/data", expect: Database{Type: DatabaseSQLite, DataDir: "/data"}},
		{name: "sqlite is case-insensitive", input: "SQLite:data", expect: Database{Type: DatabaseSQLite, DataDir: "data"}},
		{name: "sqlite without dir", input: "sqlite", expectErr: true},
		{name: "inmem with params", input: "inmem:foo", expectErr: true},
		{name: "unknown engine", input: "postgres:x", expectErr: true},
		{name: "none", input: "none", expectErr: true},
		{name: "spaces around parts", input: " inmem ", expect: Database{Type: DatabaseInMemory}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseDBConnString(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Config_FillDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{}.FillDefaults()

	assert.NoError(cfg.Validate())
	assert.Equal(DatabaseInMemory, cfg.DB.Type)
	assert.Equal(time.Second, cfg.UnauthDelay())
	assert.Equal("localhost", cfg.Address)
	assert.Equal(8080, cfg.Port)
	assert.Equal("admin", cfg.AdminUser)
	assert.Equal("password", cfg.AdminPassword)

	kept := Config{AdminUser: "root", UnauthDelayMillis: -5}.FillDefaults()
	assert.Equal("root", kept.AdminUser)
	assert.Equal(time.Duration(0), kept.UnauthDelay())
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults", cfg: Config{}.FillDefaults()},
		{name: "short secret", cfg: Config{TokenSecret: []byte("short")}.FillDefaults(), expectErr: true},
		{name: "long secret", cfg: Config{TokenSecret: make([]byte, MaxSecretSize+1)}.FillDefaults(), expectErr: true},
		{name: "sqlite without dir", cfg: Config{DB: Database{Type: DatabaseSQLite}}.FillDefaults(), expectErr: true},
		{name: "bad port", cfg: Config{Port: 70000}.FillDefaults(), expectErr: true},
		{name: "unknown db engine", cfg: Config{DB: Database{Type: "postgres"}}.FillDefaults(), expectErr: true},
		{name: "no admin password", cfg: func() Config {
			cfg := Config{}.FillDefaults()
			cfg.AdminPassword = ""
			return cfg
		}(), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_LoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "sgserver.toml")
	data := `
token_secret = "a-secret-that-is-long-enough-to-use"
db = "sqlite:/var/lib/sgserver"
unauth_delay_ms = -1
admin_user = "sollux"
port = 9000
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]byte("a-secret-that-is-long-enough-to-use"), cfg.TokenSecret)
	assert.Equal(Database{Type: DatabaseSQLite, DataDir: "/var/lib/sgserver"}, cfg.DB)
	assert.Equal(time.Duration(0), cfg.UnauthDelay())
	assert.Equal(9000, cfg.Port)
	assert.Equal("sollux", cfg.AdminUser)
	assert.Equal("", cfg.AdminPassword)
	assert.Equal("", cfg.Address)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(err)
}
