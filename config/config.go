package config

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	WechatAppID          string `mapstructure:"WECHAT_APP_ID"`
	WechatAppSecret      string `mapstructure:"WECHAT_APP_SECRET"`
	AIAPIKey             string `mapstructure:"AI_API_KEY"`
	AIBaseURL            string `mapstructure:"AI_BASE_URL"`
	AIModel              string `mapstructure:"AI_MODEL"`
	AITimeoutSeconds     int    `mapstructure:"AI_TIMEOUT_SECONDS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	PreviewRetentionDays int    `mapstructure:"PREVIEW_RETENTION_DAYS"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS", "JWT_SECRET",
		"WECHAT_APP_ID", "WECHAT_APP_SECRET",
		"AI_API_KEY", "AI_BASE_URL", "AI_MODEL", "AI_TIMEOUT_SECONDS",
		"SCHEDULER_ENABLED", "PREVIEW_RETENTION_DAYS",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	viper.SetDefault("AI_MODEL", "deepseek-chat")
	viper.SetDefault("AI_TIMEOUT_SECONDS", 90)
	viper.SetDefault("PREVIEW_RETENTION_DAYS", 30)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"aiConfigured", config.AIAPIKey != "" && config.AIBaseURL != "",
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// IsProduction reports whether the service runs with production settings.
// The dev token verifier must never be selected when this returns true.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.IsProduction() && config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET required in production")
	}

	if config.AIBaseURL != "" && config.AIAPIKey == "" {
		return log.ErrMsg("Fatal error: AI_API_KEY required when AI_BASE_URL is set")
	}

	if config.WechatAppID == "" || config.WechatAppSecret == "" {
		log.Warn("WeChat app credentials not configured, mini-program login will fail")
	}

	ConfigInstance = config
	return nil
}
