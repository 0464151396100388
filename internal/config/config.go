package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API struct {
		BaseURL        string        `mapstructure:"base_url"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"api"`
	Credentials struct {
		Driver string `mapstructure:"driver"`
		Dir    string `mapstructure:"dir"`
	} `mapstructure:"credentials"`
	Mock struct {
		Port          string `mapstructure:"port"`
		GinMode       string `mapstructure:"gin_mode"`
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	} `mapstructure:"mock"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func Load() (Config, error) {
	viper.SetDefault("api.base_url", "https://web-production-0344e.up.railway.app/api")
	viper.SetDefault("api.request_timeout", 15*time.Second)
	viper.SetDefault("credentials.driver", "file")
	viper.SetDefault("credentials.dir", defaultCredentialsDir())
	viper.SetDefault("mock.port", "8080")
	viper.SetDefault("mock.gin_mode", "release")
	viper.SetDefault("mock.jwt_secret", "mock-api-secret-not-for-production")
	viper.SetDefault("mock.token_ttl_hours", 24)
	viper.SetDefault("log.level", "info")

	viper.SetConfigName("krema")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "krema"))
	}
	_ = viper.ReadInConfig()

	viper.SetEnvPrefix("KREMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("api.base_url", "KREMA_API_BASE_URL")
	_ = viper.BindEnv("credentials.dir", "KREMA_CREDENTIALS_DIR")
	_ = viper.BindEnv("mock.port", "KREMA_MOCK_PORT")
	_ = viper.BindEnv("mock.jwt_secret", "KREMA_MOCK_JWT_SECRET")
	_ = viper.BindEnv("log.level", "KREMA_LOG_LEVEL")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func defaultCredentialsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".krema"
	}
	return filepath.Join(dir, "krema")
}
