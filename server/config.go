package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/dao/inmem"
	"github.com/dekarrin/simplegrammar/server/dao/sqlite"
)

// Token secrets outside these bounds are rejected. HS512 keys longer than
// MaxSecretSize would be hashed down, giving no extra strength.
const (
	MinSecretSize = 32
	MaxSecretSize = 64
)

// DBType names a storage engine for grammars, parses, and users.
type DBType string

const (
	DatabaseInMemory DBType = "inmem"
	DatabaseSQLite   DBType = "sqlite"
)

// Database says where the server keeps its data. DataDir is only used by
// DatabaseSQLite.
type Database struct {
	Type    DBType
	DataDir string
}

// ParseDBConnString reads a connection string of the form "engine" or
// "engine:param". "inmem" takes no param; "sqlite" needs the directory its
// database file goes in, as in "sqlite:/var/lib/sgserver".
func ParseDBConnString(s string) (Database, error) {
	engine, param, _ := strings.Cut(s, ":")
	engine = strings.ToLower(strings.TrimSpace(engine))
	param = strings.TrimSpace(param)

	db := Database{Type: DBType(engine), DataDir: param}
	switch db.Type {
	case DatabaseInMemory:
		if param != "" {
			return Database{}, fmt.Errorf("inmem DB takes no params, but got %q", param)
		}
	case DatabaseSQLite:
		if param == "" {
			return Database{}, fmt.Errorf("sqlite DB needs a data directory after ':'")
		}
	default:
		return Database{}, fmt.Errorf("DB engine must be 'inmem' or 'sqlite', not %q", engine)
	}
	return db, nil
}

// Validate checks that db names a known engine with what it needs to connect.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("sqlite DB has no data directory")
		}
		return nil
	default:
		return fmt.Errorf("unknown DB engine %q", string(db.Type))
	}
}

// Connect opens the store db describes, creating the SQLite data directory
// if needed.
func (db Database) Connect() (dao.Store, error) {
	if err := db.Validate(); err != nil {
		return nil, err
	}
	if db.Type == DatabaseInMemory {
		return inmem.NewDatastore(), nil
	}

	if err := os.MkdirAll(db.DataDir, 0770); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlite.NewDatastore(db.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

// Config holds everything needed to start a Server. Zero values are replaced
// by FillDefaults.
type Config struct {
	// TokenSecret signs bearer tokens. Changing it invalidates every token.
	TokenSecret []byte

	DB Database

	// UnauthDelayMillis is how long a rejected request waits before its
	// response is sent. Negative disables the wait; zero means 1000.
	UnauthDelayMillis int

	// PasswordCost is the bcrypt cost of stored password hashes; zero means
	// sgs.DefaultPasswordCost.
	PasswordCost int

	// AdminUser and AdminPassword are the credentials of the admin account
	// created at startup if it does not already exist.
	AdminUser     string
	AdminPassword string

	Address string
	Port    int
}

// fileConfig is the TOML form of a Config.
type fileConfig struct {
	TokenSecret       string `toml:"token_secret"`
	DB                string `toml:"db"`
	UnauthDelayMillis int    `toml:"unauth_delay_ms"`
	AdminUser         string `toml:"admin_user"`
	AdminPassword     string `toml:"admin_password"`
	Address           string `toml:"address"`
	Port              int    `toml:"port"`
}

// LoadConfig reads a Config from a TOML file. Keys missing from the file are
// left at their zero value.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		UnauthDelayMillis: fc.UnauthDelayMillis,
		AdminUser:         fc.AdminUser,
		AdminPassword:     fc.AdminPassword,
		Address:           fc.Address,
		Port:              fc.Port,
	}
	if fc.TokenSecret != "" {
		cfg.TokenSecret = []byte(fc.TokenSecret)
	}
	if fc.DB != "" {
		db, err := ParseDBConnString(fc.DB)
		if err != nil {
			return Config{}, fmt.Errorf("db: %w", err)
		}
		cfg.DB = db
	}
	return cfg, nil
}

// UnauthDelay gives UnauthDelayMillis as a duration, or zero if it is
// negative.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 0 {
		return 0
	}
	return time.Duration(cfg.UnauthDelayMillis) * time.Millisecond
}

// FillDefaults returns a copy of cfg with zero values replaced by defaults.
// The default token secret is public and must not be used in production.
func (cfg Config) FillDefaults() Config {
	if cfg.TokenSecret == nil {
		cfg.TokenSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")
	}
	if cfg.DB.Type == "" {
		cfg.DB = Database{Type: DatabaseInMemory}
	}
	if cfg.UnauthDelayMillis == 0 {
		cfg.UnauthDelayMillis = 1000
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "password"
	}
	if cfg.Address == "" {
		cfg.Address = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return cfg
}

// Validate returns an error for the first invalid setting in cfg. Unset
// settings are invalid, so defaults must be filled in first.
func (cfg Config) Validate() error {
	if n := len(cfg.TokenSecret); n < MinSecretSize || n > MaxSecretSize {
		return fmt.Errorf("token secret: must be %d to %d bytes, but is %d", MinSecretSize, MaxSecretSize, n)
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return fmt.Errorf("admin: username and password must both be set")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port: must be between 1 and 65535, but is %d", cfg.Port)
	}
	return nil
}
