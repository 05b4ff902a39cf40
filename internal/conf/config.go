package conf

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Jobs   JobsConfig   `mapstructure:"jobs"`
	Cache  CacheConfig  `mapstructure:"cache"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// JobsConfig 三个定时任务的 cron 表达式和启动首跑延迟
type JobsConfig struct {
	TrendingCron        string `mapstructure:"trendingCron"`
	SyncLikesCron       string `mapstructure:"syncLikesCron"`
	CleanupCron         string `mapstructure:"cleanupCron"`
	StartupDelaySeconds int    `mapstructure:"startupDelaySeconds"`
}

type CacheConfig struct {
	TrendingTTLSeconds int `mapstructure:"trendingTTLSeconds"`
}

// LoadConfig 加载配置
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv() // 自动读取环境变量

	// 允许环境变量替换 YAML 中的 ${VAR}
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 显式展开环境变量
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.Jobs.TrendingCron == "" {
		c.Jobs.TrendingCron = "@every 1h"
	}
	if c.Jobs.SyncLikesCron == "" {
		c.Jobs.SyncLikesCron = "@every 12h"
	}
	if c.Jobs.CleanupCron == "" {
		c.Jobs.CleanupCron = "@every 24h"
	}
	if c.Jobs.StartupDelaySeconds <= 0 {
		c.Jobs.StartupDelaySeconds = 5
	}
	if c.Cache.TrendingTTLSeconds <= 0 {
		c.Cache.TrendingTTLSeconds = 300
	}

	return &c, nil
}
