package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SerialConfig selects and paces the radio's serial port.
type SerialConfig struct {
	Name          string        `mapstructure:"name"`
	BaudRate      int           `mapstructure:"baudRate"`
	ReadTimeout   time.Duration `mapstructure:"readTimeout"`
	WriteInterval time.Duration `mapstructure:"writeInterval"`
}

// DecodeConfig controls how strictly status frames are checked.
type DecodeConfig struct {
	SkipChecksum bool `mapstructure:"skipChecksum"`
}

// LumberjackConfig configures log file rotation.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig exposes prometheus metrics over HTTP when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"clientID"`
}

type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Decode  DecodeConfig  `mapstructure:"decode"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

// FlagBindings maps configuration keys to command line flag names.
var FlagBindings = map[string]string{
	"serial.name":         "port",
	"serial.baudRate":     "baud",
	"decode.skipChecksum": "skip-checksum",
	"logging.level":       "log-level",
	"logging.format":      "log-format",
	"metrics.addr":        "metrics-addr",
	"mqtt.broker":         "broker",
}

// Load reads configuration from path, TWELITE_* environment variables and
// any flags in FlagBindings that are present in flags. Flags win over the
// environment, which wins over the file. Without a path, twelite.yaml is
// looked up in the working directory and ./configs; it may be absent.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("twelite")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("TWELITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.name", "")
	v.SetDefault("serial.baudRate", 115200)
	v.SetDefault("serial.readTimeout", "100ms")
	v.SetDefault("serial.writeInterval", "50ms")

	v.SetDefault("decode.skipChecksum", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 7)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.clientID", "")
}
