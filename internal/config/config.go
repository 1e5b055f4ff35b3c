package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Flux     FluxConfig     `mapstructure:"flux"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// ProviderConfig 选择使用哪个图像生成服务：flux 或 openai
type ProviderConfig struct {
	Type string `mapstructure:"type"`
}

type FluxConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig 会话状态只在内存中保存，到期由 janitor 自动清理
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	NoticeTTL       time.Duration `mapstructure:"notice_ttl"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLUXGEN")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// 配置文件优先，没有设置时回退到环境变量
	if cfg.Flux.BaseURL == "" {
		if baseURL := os.Getenv("FAL_BASE_URL"); baseURL != "" {
			cfg.Flux.BaseURL = baseURL
		}
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Provider.Type == "" {
		c.Provider.Type = "flux"
	}
	if c.Flux.BaseURL == "" {
		c.Flux.BaseURL = "https://fal.run"
	}
	if c.Flux.Model == "" {
		c.Flux.Model = "fal-ai/flux-pro/v1.1"
	}
	if c.Flux.Timeout == 0 {
		c.Flux.Timeout = 120 * time.Second
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "dall-e-3"
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = 120 * time.Second
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 2 * time.Hour
	}
	if c.Session.CleanupInterval == 0 {
		c.Session.CleanupInterval = 10 * time.Minute
	}
	if c.Session.NoticeTTL == 0 {
		c.Session.NoticeTTL = 5 * time.Second
	}
}
