/*
Sgserver starts a simplegrammar parse server and begins listening for new
connections.

Usage:

	sgserver [flags]
	sgserver [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them using
REST protocol. Clients log in, upload grammars with optional pattern lexers, and
submit source text or tokens to be parsed; every parse is kept along with its
tree or the error that stopped it. By default, it will listen on localhost:8080.
This can be changed with the --listen/-l flag (or config via environment var).
The flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, one will be automatically generated. As a
consequence, in this mode of operation all tokens are rendered invalid as soon
as the server shuts down. This is suitable for testing, but must be given via
either CLI flags, a config file, or environment variable if running in
production.

Settings are read from the config file first, then environment variables, then
flags; later sources override earlier ones.

The flags are:

	-v, --version
		Give the current version of the server and then exit.

	-c, --config FILE
		Read settings from the given TOML file. Recognized keys are
		token_secret, db, unauth_delay_ms, admin_user, admin_password,
		address, and port.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		SGSERVER_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable SGSERVER_TOKEN_SECRET. If no secret is specified or an empty
		secret is given, a random secret will be automatically generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable SGSERVER_DATABASE. If neither is
		given, an in-memory database is used.

	--admin-user NAME
		Create an admin user with this name at startup if one does not already
		exist. If not given, will default to the admin_user config key, and if
		that is not given, to "admin".

	--admin-password PASSWORD
		The password of the admin user created at startup. If not given, will
		default to the value of environment variable SGSERVER_ADMIN_PASSWORD,
		then the admin_password config key, and if none are given, to
		"password".
*/
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/simplegrammar/internal/version"
	"github.com/dekarrin/simplegrammar/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen        = "SGSERVER_LISTEN_ADDRESS"
	EnvSecret        = "SGSERVER_TOKEN_SECRET"
	EnvDB            = "SGSERVER_DATABASE"
	EnvAdminPassword = "SGSERVER_ADMIN_PASSWORD"
)

const (
	ExitSuccess = iota
	ExitInitError
	ExitServeError
)

var (
	flagVersion       = pflag.BoolP("version", "v", false, "Give the current version of the server and then exit.")
	flagConfig        = pflag.StringP("config", "c", "", "Read settings from the given TOML config file.")
	flagListen        = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret        = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB            = pflag.String("db", "", "Use the given DB connection string.")
	flagAdminUser     = pflag.String("admin-user", "", "Create an admin user with this name if it does not exist.")
	flagAdminPassword = pflag.String("admin-password", "", "Password for the admin user created at startup.")
)

func main() {
	returnCode := ExitSuccess
	defer func() {
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (simplegrammar v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	cfg = cfg.FillDefaults()
	srv, err := server.New(cfg)
	if err != nil {
		log.Printf("FATAL could not start server: %s", err.Error())
		returnCode = ExitInitError
		return
	}
	defer srv.Close()
	log.Printf("DEBUG Server initialized")

	// immediately create the admin user so we have someone we can log in as.
	created, err := srv.EnsureAdmin(context.Background(), cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		log.Printf("ERROR could not create initial admin user: %v", err)
		returnCode = ExitInitError
		return
	}
	if created {
		log.Printf("INFO  Added initial admin user %q", cfg.AdminUser)
	}

	log.Printf("INFO  Starting simplegrammar server %s...", version.ServerCurrent)
	if err := srv.ServeForever(cfg.Address, cfg.Port); err != nil {
		log.Printf("FATAL %v", err)
		returnCode = ExitServeError
	}
}

// loadConfig assembles the server config from the config file, environment,
// and flags.
func loadConfig() (server.Config, error) {
	var cfg server.Config
	if *flagConfig != "" {
		var err error
		cfg, err = server.LoadConfig(*flagConfig)
		if err != nil {
			return cfg, err
		}
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		bindParts := strings.SplitN(listenAddr, ":", 2)
		if len(bindParts) != 2 {
			return cfg, fmt.Errorf("listen address is not in ADDRESS:PORT or :PORT format")
		}

		port, err := strconv.Atoi(bindParts[1])
		if err != nil {
			return cfg, fmt.Errorf("%q is not a valid port number", bindParts[1])
		}
		cfg.Address = bindParts[0]
		cfg.Port = port
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			return cfg, err
		}
		cfg.DB = db
	}

	if pflag.Lookup("admin-user").Changed {
		cfg.AdminUser = *flagAdminUser
	}
	adminPass := os.Getenv(EnvAdminPassword)
	if pflag.Lookup("admin-password").Changed {
		adminPass = *flagAdminPassword
	}
	if adminPass != "" {
		cfg.AdminPassword = adminPass
	}

	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr != "" {
		cfg.TokenSecret = []byte(tokSecStr)
	}

	if len(cfg.TokenSecret) > 0 {
		for len(cfg.TokenSecret) < server.MinSecretSize {
			doubled := make([]byte, len(cfg.TokenSecret)*2)
			copy(doubled, cfg.TokenSecret)
			copy(doubled[len(cfg.TokenSecret):], cfg.TokenSecret)
			cfg.TokenSecret = doubled
		}

		if len(cfg.TokenSecret) > server.MaxSecretSize {
			// keys would be chopped at 64, so rather than the user thinking
			// they have more security by giving a longer key, refuse to start.
			return cfg, fmt.Errorf("token secret is %d bytes, but it must be <= %d bytes", len(cfg.TokenSecret), server.MaxSecretSize)
		}
	} else {
		cfg.TokenSecret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(cfg.TokenSecret); err != nil {
			return cfg, fmt.Errorf("could not generate token secret: %w", err)
		}

		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	return cfg, nil
}
