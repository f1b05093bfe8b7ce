package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		WorkDir      string
		RollbarToken string
		Locale       string // BCP 47 tag used for collation
		Server       ServerConfig
		Backend      BackendConfig
		Labels       Labels
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	BackendConfig struct {
		Driver   string // rest | postgres | sqlite | memory
		BaseURL  string
		Timeout  time.Duration
		DSN      string
		SeedFile string
	}

	// Labels are the localized strings shown in place of missing data.
	Labels struct {
		NoClass string
		Unnamed string
	}
)

// Backend drivers
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

func newViper() *viper.Viper {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Scorebook")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("locale", "vi")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("backend.driver", DriverREST)
	conf.SetDefault("backend.baseURL", "http://localhost:3001")
	conf.SetDefault("backend.timeout", 10*time.Second)
	conf.SetDefault("backend.dsn", "")
	conf.SetDefault("backend.seedFile", "")
	conf.SetDefault("labels.noClass", "Chưa có lớp")
	conf.SetDefault("labels.unnamed", "Chưa có tên")

	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return conf
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name, eg: DEV_BACKEND_BASEURL.
func NewConfig() *Config {
	conf := newViper()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		WorkDir:      wd,
		RollbarToken: conf.GetString("rollbarToken"),
		Locale:       conf.GetString("locale"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         conf.GetString("server.address"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Backend: BackendConfig{
			Driver:   strings.ToLower(conf.GetString("backend.driver")),
			BaseURL:  strings.TrimRight(conf.GetString("backend.baseURL"), "/"),
			Timeout:  conf.GetDuration("backend.timeout"),
			DSN:      conf.GetString("backend.dsn"),
			SeedFile: conf.GetString("backend.seedFile"),
		},
		Labels: Labels{
			NoClass: conf.GetString("labels.noClass"),
			Unnamed: conf.GetString("labels.unnamed"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no env lookups, memory backend.
func NewTestConfig() *Config {
	conf := newViper()
	return &Config{
		Env:      "TEST",
		Build:    "test",
		Debug:    false,
		TestMode: true,
		AppName:  conf.GetString("appName"),
		Locale:   conf.GetString("locale"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			Address:         ":0",
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Backend: BackendConfig{
			Driver:  DriverMemory,
			BaseURL: conf.GetString("backend.baseURL"),
			Timeout: conf.GetDuration("backend.timeout"),
		},
		Labels: Labels{
			NoClass: conf.GetString("labels.noClass"),
			Unnamed: conf.GetString("labels.unnamed"),
		},
	}
}
