package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the board client needs at startup. Values come
// from the environment (optionally seeded from a .env file in main).
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	BackendURL string `mapstructure:"BACKEND_URL"`
	PushURL    string `mapstructure:"PUSH_URL"`

	PollIntervalMS  int `mapstructure:"POLL_INTERVAL_MS"`
	PushRetryDelayS int `mapstructure:"PUSH_RETRY_DELAY_S"`
	PushMaxAttempts int `mapstructure:"PUSH_MAX_ATTEMPTS"`

	CachePath string `mapstructure:"CACHE_PATH"`
	LogFile   string `mapstructure:"LOG_FILE"`

	TeacherUsername string `mapstructure:"TEACHER_USERNAME"`
	TeacherPassword string `mapstructure:"TEACHER_PASSWORD"`
	TeacherUserID   int    `mapstructure:"TEACHER_USER_ID"`
	StudentUsername string `mapstructure:"STUDENT_USERNAME"`
	StudentPassword string `mapstructure:"STUDENT_PASSWORD"`
	StudentUserID   int    `mapstructure:"STUDENT_USER_ID"`
}

func Load() (Config, error) {
	viper.SetDefault("LISTEN_ADDR", ":8090")
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("PUSH_URL", "ws://localhost:8000/ws/tasks")
	viper.SetDefault("POLL_INTERVAL_MS", 1000)
	viper.SetDefault("PUSH_RETRY_DELAY_S", 3)
	viper.SetDefault("PUSH_MAX_ATTEMPTS", 5)
	viper.SetDefault("CACHE_PATH", "./board.db")
	viper.SetDefault("LOG_FILE", "logs/board.log")
	viper.SetDefault("TEACHER_USERNAME", "teacher")
	viper.SetDefault("TEACHER_PASSWORD", "teacher")
	viper.SetDefault("TEACHER_USER_ID", 1)
	viper.SetDefault("STUDENT_USERNAME", "student")
	viper.SetDefault("STUDENT_PASSWORD", "student")
	viper.SetDefault("STUDENT_USER_ID", 2)

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c Config) PushRetryDelay() time.Duration {
	return time.Duration(c.PushRetryDelayS) * time.Second
}
