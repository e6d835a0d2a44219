package app

import (
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/utils"
)

type Config struct {
	Port        string
	Environment string
	Version     string
	MetricsAddr string
	RedisAddr   string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
		MetricsAddr: utils.GetEnv("METRICS_ADDR", "", log),
		RedisAddr:   utils.GetEnv("REDIS_ADDR", "", log),
	}
}
