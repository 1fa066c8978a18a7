package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Services struct {
		Weather struct {
			BaseURL  string        `mapstructure:"baseURL"`
			Timeout  time.Duration `mapstructure:"timeout"`
			CacheTTL time.Duration `mapstructure:"cacheTTL"`
		} `mapstructure:"weather"`
		Routing struct {
			BaseURL  string        `mapstructure:"baseURL"`
			Timeout  time.Duration `mapstructure:"timeout"`
			CacheTTL time.Duration `mapstructure:"cacheTTL"`
		} `mapstructure:"routing"`
		VectorSearch struct {
			BaseURL    string        `mapstructure:"baseURL"`
			Collection string        `mapstructure:"collection"`
			Timeout    time.Duration `mapstructure:"timeout"`
		} `mapstructure:"vectorSearch"`
		Assistant struct {
			Model string `mapstructure:"model"`
		} `mapstructure:"assistant"`
	} `mapstructure:"services"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
