package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files.
	AppName = "docflows"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DOCFLOWS"
)

// Spec sources.
const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

// Config holds the application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Source        string `mapstructure:"source"`
	WorkflowsFile string `mapstructure:"workflows_file"`
	ChecksFile    string `mapstructure:"checks_file"`
	Workflow      string `mapstructure:"workflow"`

	HTTPAddr string `mapstructure:"http_addr"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"redis"`

	// Encryption seals spec documents at rest when Key is set.
	// Keys are base64 encoded AES-256 keys.
	Encryption struct {
		Key          string   `mapstructure:"key"`
		FallbackKeys []string `mapstructure:"fallback_keys"`
	} `mapstructure:"encryption"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"log-format":     "log_format",
	"source":         "source",
	"workflows":      "workflows_file",
	"checks":         "checks_file",
	"workflow":       "workflow",
	"addr":           "http_addr",
	"redis-addr":     "redis.addr",
	"redis-password": "redis.password",
	"redis-db":       "redis.db",
	"redis-prefix":   "redis.prefix",
}

// Load resolves the configuration from, in increasing precedence, defaults,
// the config file, DOCFLOWS_* environment variables and the flags of flags
// that were set. An empty cfgFile searches for docflows.yaml in the working
// directory; a missing file is not an error.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("source", SourceFile)
	v.SetDefault("workflows_file", "workflows.json")
	v.SetDefault("checks_file", "")
	v.SetDefault("workflow", "ReportWorkflow")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "docflows:spec:")
	v.SetDefault("encryption.key", "")
	v.SetDefault("encryption.fallback_keys", []string{})
}

// Validate checks the values that have a closed set of choices.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceFile, SourceRedis:
	default:
		return fmt.Errorf("invalid source %q: expected %q or %q", c.Source, SourceFile, SourceRedis)
	}
	if c.Source == SourceFile && c.WorkflowsFile == "" {
		return fmt.Errorf("workflows_file is required when source is %q", SourceFile)
	}
	return nil
}
