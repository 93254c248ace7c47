// Package config loads the command line configuration from defaults, an optional
// config.yaml and UVCMONITOR_* environment variables, in increasing priority.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

const envPrefix = "UVCMONITOR"

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	DevicePath string
	LogLevel   string
	LogFormat  string

	PrefsBackend string
	PrefsDir     string

	RedisAddr   string
	RedisPrefix string
}

// Load reads the configuration. When file is empty config.yaml is searched for in
// the working directory, $XDG_CONFIG_HOME/uvcmonitor and /etc/uvcmonitor; a missing
// file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("device.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("prefs.backend", BackendFile)
	v.SetDefault("prefs.dir", prefs.DefaultDir())
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "uvcmonitor")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range []string{
			".",
			filepath.Join(xdg.ConfigHome, "uvcmonitor"),
			"/etc/uvcmonitor",
		} {
			v.AddConfigPath(os.ExpandEnv(path))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DevicePath:   v.GetString("device.path"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
		PrefsBackend: v.GetString("prefs.backend"),
		PrefsDir:     v.GetString("prefs.dir"),
		RedisAddr:    v.GetString("redis.addr"),
		RedisPrefix:  v.GetString("redis.prefix"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.PrefsBackend {
	case BackendFile, BackendRedis, BackendMemory:
		return nil
	}
	return fmt.Errorf("prefs.backend %q: want %s, %s or %s", c.PrefsBackend, BackendFile, BackendRedis, BackendMemory)
}

// Store builds the configured preferences store. The returned close function
// releases any connection the store holds.
func (c *Config) Store(ctx context.Context) (prefs.Store, func() error, error) {
	switch c.PrefsBackend {
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis %s: %w", c.RedisAddr, err)
		}
		return prefs.NewRedisStore(client, prefs.WithPrefix(c.RedisPrefix)), client.Close, nil
	case BackendMemory:
		return prefs.NewMemoryStore(), noClose, nil
	}
	return prefs.NewFileStore(c.PrefsDir), noClose, nil
}

func noClose() error { return nil }
