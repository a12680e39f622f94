package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugAddress    string
		Host            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		AllowOrigins    []string
	}

	// AuthConfig describes how identity provider tokens are verified.
	AuthConfig struct {
		JWTSecret   string
		JWTIssuer   string
		JWTAudience string
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only
		MaxOpenConns  int
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
		Channel  string
	}

	Config struct {
		Debug           bool
		TestMode        bool
		AppName         string
		Env             string
		Build           string
		FrontendBaseURL string
		AdminEmail      string
		SendgridAPIKey  string
		RollbarToken    string
		MeetCredentials string

		defaultFromEmail string

		Server   ServerConfig
		Auth     AuthConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// NewConfig loads the configuration of the current ENV (DEV by default).
// Values come from the environment, prefixed with the ENV name (eg. DEV_DATABASE_HOST),
// optionally seeded from config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Tutorly")
	v.SetDefault("build", "develop")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("adminEmail", "admin@localhost")

	v.SetDefault("server_address", ":8000")
	v.SetDefault("server_debugAddress", ":4000")
	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 10*time.Second)
	v.SetDefault("server_shutdownTimeout", 10*time.Second)
	v.SetDefault("server_allowOrigins", []string{"http://localhost:3000"})

	v.SetDefault("auth_jwtSecret", "super-secret-jwt-token-with-at-least-32-characters-long")
	v.SetDefault("auth_jwtIssuer", "")
	v.SetDefault("auth_jwtAudience", "authenticated")

	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "tutorly")
	v.SetDefault("database_user", "tutorly")
	v.SetDefault("database_password", "")
	v.SetDefault("database_adminUser", "postgres")
	v.SetDefault("database_adminPassword", "")
	v.SetDefault("database_disableTLS", true)
	v.SetDefault("database_path", "tutorly.db")
	v.SetDefault("database_maxOpenConns", 20)

	v.SetDefault("redis_address", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_channel", "tutorly:realtime")

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		AdminEmail:       v.GetString("adminEmail"),
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		MeetCredentials:  v.GetString("meetCredentials"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:         v.GetString("server_address"),
			DebugAddress:    v.GetString("server_debugAddress"),
			Host:            v.GetString("server_host"),
			ReadTimeout:     v.GetDuration("server_readTimeout"),
			WriteTimeout:    v.GetDuration("server_writeTimeout"),
			ShutdownTimeout: v.GetDuration("server_shutdownTimeout"),
			AllowOrigins:    v.GetStringSlice("server_allowOrigins"),
		},
		Auth: AuthConfig{
			JWTSecret:   v.GetString("auth_jwtSecret"),
			JWTIssuer:   v.GetString("auth_jwtIssuer"),
			JWTAudience: v.GetString("auth_jwtAudience"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetString("database_port"),
			Name:          v.GetString("database_name"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			DisableTLS:    v.GetBool("database_disableTLS"),
			Path:          v.GetString("database_path"),
			MaxOpenConns:  v.GetInt("database_maxOpenConns"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis_address"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			Channel:  v.GetString("redis_channel"),
		},
	}
}

// NewTestConfig returns the configuration used by tests; it never reads the environment.
func NewTestConfig() *Config {
	return &Config{
		Debug:            true,
		TestMode:         true,
		AppName:          "Tutorly",
		Env:              "TEST",
		Build:            "test",
		FrontendBaseURL:  "http://localhost:3000",
		AdminEmail:       "admin@tutorly.test",
		defaultFromEmail: "noreply@tutorly.test",
		Server: ServerConfig{
			Address:         ":0",
			ShutdownTimeout: time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   "test-secret",
			JWTAudience: "authenticated",
		},
		Database: DatabaseConfig{Engine: "sqlite"},
		Redis:    RedisConfig{Channel: "tutorly:test"},
	}
}
