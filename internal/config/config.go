package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreBadger   = "badger"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"3000" validate:"min=1,max=65535"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"  envDefault:"true"`

	RoomStore string `env:"ROOM_STORE" envDefault:"file" validate:"oneof=file memory redis postgres badger"`
	RoomsDir  string `env:"ROOMS_DIR"  envDefault:"data/rooms"  validate:"required_if=RoomStore file"`
	BadgerDir string `env:"BADGER_DIR" envDefault:"data/badger" validate:"required_if=RoomStore badger"`

	RedisHost     string `env:"REDIS_HOST"     envDefault:"localhost"`
	RedisPort     uint16 `env:"REDIS_PORT"     envDefault:"6379" validate:"min=1,max=65535"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"    validate:"min=0"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"poker_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"poker_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"poker_db"`

	EmptyRoomTTL    time.Duration `env:"EMPTY_ROOM_TTL"    envDefault:"5m"  validate:"gt=0"`
	ReaperInterval  time.Duration `env:"REAPER_INTERVAL"   envDefault:"1m"  validate:"gt=0"`
	OwnerAbsenceTTL time.Duration `env:"OWNER_ABSENCE_TTL" envDefault:"30s" validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}
	return Parse()
}

// Parse reads the process environment into a validated Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
