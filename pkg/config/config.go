package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	RelationshipFriendship = "friendship"
	RelationshipFollow     = "follow"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	Storage                 string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
	JWTSecret               string
	RequireAuth             bool
	RelationshipModel       string
	NotifyWorkers           int
	NotifyQueueSize         int
	NotifyTimeout           time.Duration
	NewsflashURL            string
	NewsflashMaxLength      int
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.RequireAuth && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when REQUIRE_AUTH is enabled")
	}
	return nil
}

// Load reads configuration from an optional .env file and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("POSTGRES_CONN_STR", "")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "socialmedia")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REQUIRE_AUTH", true)
	v.SetDefault("RELATIONSHIP_MODEL", RelationshipFriendship)
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 1024)
	v.SetDefault("NOTIFY_TIMEOUT", "10s")
	v.SetDefault("NEWSFLASH_URL", "")
	v.SetDefault("NEWSFLASH_MAX_LENGTH", 280)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		Storage:                 strings.ToLower(v.GetString("STORAGE")),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		RequireAuth:             v.GetBool("REQUIRE_AUTH"),
		RelationshipModel:       strings.ToLower(v.GetString("RELATIONSHIP_MODEL")),
		NotifyWorkers:           v.GetInt("NOTIFY_WORKERS"),
		NotifyQueueSize:         v.GetInt("NOTIFY_QUEUE_SIZE"),
		NotifyTimeout:           v.GetDuration("NOTIFY_TIMEOUT"),
		NewsflashURL:            v.GetString("NEWSFLASH_URL"),
		NewsflashMaxLength:      v.GetInt("NEWSFLASH_MAX_LENGTH"),
	}

	if cfg.RelationshipModel != RelationshipFollow {
		cfg.RelationshipModel = RelationshipFriendship
	}
	if cfg.Storage != StorageMemory {
		cfg.Storage = StoragePostgres
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	return cfg
}
