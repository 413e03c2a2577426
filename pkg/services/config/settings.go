package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "RISKREAD"

	// PollIntervalEnv keeps the variable name the web client used so existing
	// deployments configure both the same way.
	PollIntervalEnv     = "NEXT_PUBLIC_ANALYSIS_POLL_INTERVAL_MS"
	DefaultPollInterval = 5000 * time.Millisecond

	DefaultAPIURL         = "http://localhost:3000"
	DefaultProfile        = "DEFAULT"
	DefaultRequestTimeout = 30 * time.Second
	DefaultCacheCapacity  = 200
	DefaultCacheTTL       = 720 * time.Hour
)

type CacheSettings struct {
	Path     string        `mapstructure:"path"`
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadSettings struct {
	Backend     string `mapstructure:"backend"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Profile     string `mapstructure:"profile"`
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
}

type Settings struct {
	APIURL         string         `mapstructure:"api_url"`
	Token          string         `mapstructure:"token"`
	Profile        string         `mapstructure:"profile"`
	ProfilePath    string         `mapstructure:"profile_path"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	LogLevel       string         `mapstructure:"log_level"`
	Cache          CacheSettings  `mapstructure:"cache"`
	Upload         UploadSettings `mapstructure:"upload"`

	PollInterval time.Duration `mapstructure:"-"`
}

// NewViper returns a viper instance with defaults, the RISKREAD_ env prefix
// and the optional ~/.riskread/config.yaml file wired in.
func NewViper() *viper.Viper {
	v := viper.New()

	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".riskread")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("profile_path", filepath.Join(home, ".riskreadcfg"))
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("cache.path", filepath.Join(dir, "cache.sqlite"))
	v.SetDefault("cache.capacity", DefaultCacheCapacity)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("upload.backend", "none")
	v.SetDefault("upload.prefix", "uploads")
	v.SetDefault("upload.use_ssl", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range []string{"token", "upload.bucket", "upload.profile", "upload.region", "upload.endpoint",
		"upload.access_key", "upload.secret_key", "upload.account_name", "upload.account_key"} {
		_ = v.BindEnv(key)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	return v
}

func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.PollInterval = ParsePollInterval(os.Getenv(PollIntervalEnv))

	if s.Cache.Capacity < 0 {
		return nil, fmt.Errorf("cache.capacity must not be negative, got %d", s.Cache.Capacity)
	}
	if s.Cache.TTL < 0 {
		return nil, fmt.Errorf("cache.ttl must not be negative, got %s", s.Cache.TTL)
	}
	return &s, nil
}

// maxPollIntervalMs is the largest millisecond count a time.Duration holds.
const maxPollIntervalMs = float64(math.MaxInt64 / int64(time.Millisecond))

// ParsePollInterval reads a millisecond count. Anything that is not a finite
// positive number within Duration range yields DefaultPollInterval.
func ParsePollInterval(raw string) time.Duration {
	ms, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(ms) || ms <= 0 || ms > maxPollIntervalMs {
		return DefaultPollInterval
	}
	return time.Duration(ms * float64(time.Millisecond))
}
