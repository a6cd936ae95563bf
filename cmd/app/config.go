package main

import (
	"fmt"
	"strings"

	"vibin_quest_backend/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	X        XConfig        `yaml:"x"`
	Telegram TelegramConfig `yaml:"telegram"`
	Rewards  RewardsConfig  `yaml:"rewards"`
	Admin    AdminConfig    `yaml:"admin"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type XConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	APIBaseURL   string `yaml:"apiBaseUrl"`
}

type TelegramConfig struct {
	BotToken         string `yaml:"botToken"`
	ChannelID        int64  `yaml:"channelId"`
	VerifyMembership bool   `yaml:"verifyMembership"`
}

// RewardsConfig holds the claim cooldown and award amounts; none of
// these constants live in domain code.
type RewardsConfig struct {
	ClaimCooldownHours int   `yaml:"claimCooldownHours"`
	ClaimReward        int64 `yaml:"claimReward"`
	ReferralReward     int64 `yaml:"referralReward"`
}

type AdminConfig struct {
	Token string `yaml:"token"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Rewards.ClaimCooldownHours <= 0 {
		return nil, fmt.Errorf("rewards.claimCooldownHours must be positive")
	}

	return &cfg, nil
}
