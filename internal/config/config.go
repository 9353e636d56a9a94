package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// EngineConfig holds the scheduling tunables. Defaults match the shipped
// app behavior; validation keeps operator overrides inside sane clock
// arithmetic.
type EngineConfig struct {
	GracePeriodMinutes  int `mapstructure:"grace_period_minutes" validate:"min=0,max=720"`
	FollowupOffsetHours int `mapstructure:"followup_offset_hours" validate:"min=1,max=12"`
	SnoozeMinutes       int `mapstructure:"snooze_minutes" validate:"min=1,max=120"`
	NightCutoffHour     int `mapstructure:"night_cutoff_hour" validate:"min=12,max=23"`
	MorningHour         int `mapstructure:"morning_hour" validate:"min=0,max=11"`
}

type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

func (e EngineConfig) GracePeriod() time.Duration {
	return time.Duration(e.GracePeriodMinutes) * time.Minute
}

func (e EngineConfig) FollowupOffset() time.Duration {
	return time.Duration(e.FollowupOffsetHours) * time.Hour
}

func (e EngineConfig) SnoozeOffset() time.Duration {
	return time.Duration(e.SnoozeMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.grace_period_minutes", 30)
	v.SetDefault("engine.followup_offset_hours", 2)
	v.SetDefault("engine.snooze_minutes", 15)
	v.SetDefault("engine.night_cutoff_hour", 23)
	v.SetDefault("engine.morning_hour", 8)
	v.SetDefault("storage.path", "reminders.db")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml if present and applies REMINDER_* env
// overrides; a missing file is not an error, the defaults stand.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("REMINDER")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
