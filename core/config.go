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
	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	PortalConfig struct {
		APIBaseURL    string
		APITimeout    time.Duration
		SessionCookie string
		SessionTTL    time.Duration
		SecureCookies bool
		LoginRate     float64 // attempts per second, per client
		LoginBurst    int
		// read the client IP from X-Forwarded-For when the peer is a private or loopback proxy
		TrustProxy bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	DevAPIConfig struct {
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
	}

	CLIConfig struct {
		SessionFile    string
		KeyringService string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server ServerConfig
		Portal PortalConfig
		Redis  RedisConfig
		DevAPI DevAPIConfig
		CLI    CLIConfig
	}
)

// NewConfig loads the configuration from defaults, the environment and an optional
// `config/.env.<env>` file. Environment variables are prefixed by the env name,
// eg. `portal.apiBaseURL` is read from DEV_PORTAL_APIBASEURL.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	setDefaults(conf, env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         conf.GetString("server.address"),
			Host:            conf.GetString("server.host"),
			DebugHost:       conf.GetString("server.debugHost"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Portal: PortalConfig{
			APIBaseURL:    strings.TrimRight(conf.GetString("portal.apiBaseURL"), "/"),
			APITimeout:    conf.GetDuration("portal.apiTimeout"),
			SessionCookie: conf.GetString("portal.sessionCookie"),
			SessionTTL:    conf.GetDuration("portal.sessionTTL"),
			SecureCookies: conf.GetBool("portal.secureCookies"),
			LoginRate:     conf.GetFloat64("portal.loginRate"),
			LoginBurst:    conf.GetInt("portal.loginBurst"),
			TrustProxy:    conf.GetBool("portal.trustProxy"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("redis.addr"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
			Prefix:   conf.GetString("redis.prefix"),
		},
		DevAPI: DevAPIConfig{
			Address:            conf.GetString("devapi.address"),
			SecretKey:          conf.GetString("devapi.secretKey"),
			JWTExpirationDelta: conf.GetDuration("devapi.jwtExpirationDelta"),
		},
		CLI: CLIConfig{
			SessionFile:    conf.GetString("cli.sessionFile"),
			KeyringService: conf.GetString("cli.keyringService"),
		},
	}
}

func setDefaults(conf *viper.Viper, env string) {
	conf.SetDefault("debug", env == "DEV" || env == "TEST")
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("build", "develop")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.address", ":8080")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("portal.apiBaseURL", "http://localhost:5294/api/v1")
	conf.SetDefault("portal.apiTimeout", 30*time.Second)
	conf.SetDefault("portal.sessionCookie", "masomo_sid")
	conf.SetDefault("portal.sessionTTL", 7*24*time.Hour)
	conf.SetDefault("portal.secureCookies", env == "QA" || env == "PROD")
	conf.SetDefault("portal.loginRate", 10.0/60.0)
	conf.SetDefault("portal.loginBurst", 10)
	conf.SetDefault("portal.trustProxy", false)

	conf.SetDefault("redis.addr", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)
	conf.SetDefault("redis.prefix", "masomo:session:")

	conf.SetDefault("devapi.address", ":5294")
	conf.SetDefault("devapi.secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("devapi.jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("cli.sessionFile", defaultSessionFile())
	conf.SetDefault("cli.keyringService", "masomo-cli")
}

func configDir() string {
	if dir := os.Getenv("MASOMO_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".masomo", "session.json")
	}
	return filepath.Join(dir, "masomo", "session.json")
}
