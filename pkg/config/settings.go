package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var ServiceConf *ServiceConfig

type RedisConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	PassWord string `mapstructure:"passWord" json:"passWord"`
}

type MongoDB struct {
	Link string `mapstructure:"link" json:"link"`
}

// GNewsConfig 新闻源 API 配置
type GNewsConfig struct {
	APIKey  string `mapstructure:"apiKey" json:"apiKey"`
	BaseURL string `mapstructure:"baseURL" json:"baseURL"`
}

type ServiceConfig struct {
	Mongo   MongoDB     `mapstructure:"mongo" json:"mongo"`
	RedisDB RedisConfig `mapstructure:"redis" json:"redis"`
	GNews   GNewsConfig `mapstructure:"gnews" json:"gnews"`
}

func InitConfig(dev string, configPath string) {
	//Instantiating an object
	v := viper.New()

	configFile := "configs/config-pro.yaml"
	if dev == "debug" {
		configFile = "configs/config-dev.yaml"
	} else if dev == "local" {
		configFile = "configs/config-local.yaml"
	}

	if configPath != "" {
		configFile = fmt.Sprintf("%s/config-%s.yaml", configPath, dev)
	}

	//Reading Configuration Files
	v.SetConfigFile(configFile)

	//Reading in a file
	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}

	// 展开 YAML 中的 ${VAR} 环境变量引用
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	//How to use the ServiceConf object in other files - global variables
	if err := v.Unmarshal(&ServiceConf); err != nil {
		panic(err)
	}
}
