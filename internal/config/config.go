package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shouni/visionary-gallery/pkg/storage"
)

// EnvPrefix は環境変数の接頭辞です。storage.backend は VISIONARY_STORAGE_BACKEND になります。
const EnvPrefix = "VISIONARY"

// ストレージのバックエンド名。
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// リモート入出力のプロバイダ名。空文字はローカルファイルのみです。
const (
	RemoteNone = ""
	RemoteGCS  = "gcs"
	RemoteS3   = "s3"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Download DownloadConfig `mapstructure:"download"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	Slot       string `mapstructure:"slot"`
	QuotaBytes int64  `mapstructure:"quota_bytes"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
	Compress bool  `mapstructure:"compress"`
	Quality  int   `mapstructure:"quality"`
}

type DownloadConfig struct {
	Dir      string        `mapstructure:"dir"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RemoteConfig は upload の入力元と download の保存先に gs:// や s3:// を使う設定です。
type RemoteConfig struct {
	Provider string `mapstructure:"provider"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults は既定値を登録します。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", defaultDataDir())
	v.SetDefault("storage.slot", "visionary_gallery")
	v.SetDefault("storage.quota_bytes", storage.DefaultQuota)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "visionary:")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash-image")

	v.SetDefault("upload.max_bytes", 4*1024*1024)
	v.SetDefault("upload.compress", false)
	v.SetDefault("upload.quality", 85)

	v.SetDefault("download.dir", ".")
	v.SetDefault("download.timeout", 30*time.Second)
	v.SetDefault("download.cache_ttl", time.Hour)

	v.SetDefault("remote.provider", RemoteNone)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New は既定値と環境変数を設定した viper を返します。
// configFile が空の場合は $HOME/.config/visionary/config.(toml|yaml) を探します。
func New(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "visionary"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load は設定ファイルがあれば読み込み、Config に展開します。
// ファイルが見つからないことはエラーにしません。
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の展開に失敗しました: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (file, redis, memory)", c.Storage.Backend)
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("storage.slot must not be empty")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	switch c.Remote.Provider {
	case RemoteNone, RemoteGCS, RemoteS3:
	default:
		return fmt.Errorf("unknown remote provider %q (gcs, s3)", c.Remote.Provider)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (text, json)", c.Log.Format)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "visionary")
	}
	return ".visionary"
}
