package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"shop"`

	ServerPort int `envconfig:"SERVER_PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// CookieSecure marks the access and XSRF cookies Secure; disable for plain-HTTP development.
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"true"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("notice: %s not loaded: %v, using system environment", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Brokers() []string {
	return CSV(c.KafkaBrokers)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
