/*
Kelpd starts a kelp script-hosting server and begins listening for new
connections.

Usage:

	kelpd [flags]
	kelpd [flags] -l [[ADDRESS]:PORT]

Once started, kelpd listens for HTTP requests and responds to them using a
REST API for saving, listing, and running kelp scripts. By default, it
listens on :8080. This can be changed with the --listen/-l flag, the
--config/-f flag, or the KELPD_LISTEN_ADDRESS environment variable.

If a JWT token secret is not given, one is automatically generated. As a
consequence, in this mode of operation all tokens are rendered invalid as
soon as the server shuts down. This is suitable for testing, but must be
given via config file, CLI flag, or environment variable if running in
production.

The flags are:

	-v, --version
		Give the current version of kelpd and then exit.

	-f, --config CONFIG_FILE
		Load configuration from the given TOML file. Values not set in the
		file fall back to their respective flags, environment variables, and
		finally built-in defaults, in that order.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, falls back to the value of environment
		variable KELPD_LISTEN_ADDRESS, and if that is not given, defaults to
		:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. Must be between 32
		and 64 bytes. If not given, falls back to the value of environment
		variable KELPD_TOKEN_SECRET, and if that is not given, a random
		secret is generated.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of: inmem,
		sqlite. inmem has no further params. sqlite needs the path to the
		data directory, e.g. sqlite:path/to/data_dir. If not given, falls
		back to the value of environment variable KELPD_DATABASE, and if
		that is not given, defaults to an in-memory database.
*/
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/kelp/internal/config"
	"github.com/dekarrin/kelp/internal/version"
	"github.com/dekarrin/kelp/server"
	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/kelpsvc"
	"github.com/dekarrin/kelp/server/serr"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "KELPD_LISTEN_ADDRESS"
	EnvSecret = "KELPD_TOKEN_SECRET"
	EnvDB     = "KELPD_DATABASE"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of kelpd and then exit.")
	flagConfig  = pflag.StringP("config", "f", "", "Load configuration from the given TOML file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("kelpd v%s\n", version.ServerCurrent)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err.Error())
		os.Exit(1)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized")

	svc := kelpsvc.Service{DB: srv.Store()}
	_, err = svc.CreateUser(context.Background(), "admin", "admin", "", dao.Admin)
	if err != nil && !errors.Is(err, serr.ErrAlreadyExists) {
		log.Printf("ERROR could not create initial admin user: %v", err)
	}

	log.Printf("INFO  Starting kelpd %s on %s...", version.ServerCurrent, cfg.ListenAddress)
	if err := srv.ListenAndServe(cfg.ListenAddress); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			return config.Config{}, err
		}
	}

	if listenAddr := pickFlagOrEnv(*flagListen, pflag.Lookup("listen").Changed, EnvListen); listenAddr != "" {
		if _, _, err := splitListenAddr(listenAddr); err != nil {
			return config.Config{}, err
		}
		cfg.ListenAddress = listenAddr
	}

	if dbConnStr := pickFlagOrEnv(*flagDB, pflag.Lookup("db").Changed, EnvDB); dbConnStr != "" {
		db, err := config.ParseDBConnString(dbConnStr)
		if err != nil {
			return config.Config{}, fmt.Errorf("not a valid DB string: %q: %w", dbConnStr, err)
		}
		cfg.DB = db
	}

	if secret := pickFlagOrEnv(*flagSecret, pflag.Lookup("secret").Changed, EnvSecret); secret != "" {
		cfg.TokenSecret = []byte(secret)
	} else if cfg.TokenSecret == nil {
		cfg.TokenSecret = make([]byte, config.MaxSecretSize)
		if _, err := rand.Read(cfg.TokenSecret); err != nil {
			return config.Config{}, fmt.Errorf("could not generate token secret: %w", err)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	return cfg, nil
}

func pickFlagOrEnv(flagVal string, flagChanged bool, envVar string) string {
	if flagChanged {
		return flagVal
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return flagVal
}

func splitListenAddr(addr string) (host string, port int, err error) {
	parts := strings.SplitN(addr, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("listen address %q is not in ADDRESS:PORT or :PORT format", addr)
	}
	port, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", parts[1])
	}
	return parts[0], port, nil
}
