package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default) | TEST | QA | PROD
		AppName  string
		Build    string
		WorkDir  string

		SecretKey                 []byte
		PasswordResetTimeoutDelta time.Duration
		FrontendBaseURL           string

		defaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string
		DeepseekApiKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Reminder ReminderConfig
		Gamify   GamifyConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	ReminderConfig struct {
		PollInterval time.Duration
		// CheckWindow bounds the server-side look-ahead: only events starting
		// within this window are reported by the check endpoint.
		CheckWindow time.Duration
		// SessionWindow bounds how far in advance a timer may be armed.
		SessionWindow time.Duration
		// LookBack bounds how late a reminder may still fire; anything older
		// is stale and silently skipped.
		LookBack time.Duration
	}

	GamifyConfig struct {
		DailyGoal        int
		CompletionPoints int
		DailyBonusPoints int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Malezi")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "y0m(h3&^bqm$-x1!p7u#f)9s+wz@5e8c4vj*2k6dngr_ta+qlo")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", "localhost:9000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "malezi")
	v.SetDefault("database.user", "malezi")
	v.SetDefault("database.password", "malezi")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("reminder.pollInterval", time.Minute)
	v.SetDefault("reminder.checkWindow", 30*time.Minute)
	v.SetDefault("reminder.sessionWindow", 24*time.Hour)
	v.SetDefault("reminder.lookBack", 30*time.Minute)

	v.SetDefault("gamify.dailyGoal", 3)
	v.SetDefault("gamify.completionPoints", 10)
	v.SetDefault("gamify.dailyBonusPoints", 50)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: env == "TEST",
		Env:      env,
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		WorkDir:  wd,

		SecretKey:                 []byte(v.GetString("secretKey")),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),

		defaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		DeepseekApiKey:   v.GetString("deepseekApiKey"),

		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Addr:                      v.GetString("server.addr"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Reminder: ReminderConfig{
			PollInterval:  v.GetDuration("reminder.pollInterval"),
			CheckWindow:   v.GetDuration("reminder.checkWindow"),
			SessionWindow: v.GetDuration("reminder.sessionWindow"),
			LookBack:      v.GetDuration("reminder.lookBack"),
		},
		Gamify: GamifyConfig{
			DailyGoal:        v.GetInt("gamify.dailyGoal"),
			CompletionPoints: v.GetInt("gamify.completionPoints"),
			DailyBonusPoints: v.GetInt("gamify.dailyBonusPoints"),
		},
	}
	if conf.TestMode {
		conf.Debug = true
	}
	return conf
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// Address returns the database host:port pair.
func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}
