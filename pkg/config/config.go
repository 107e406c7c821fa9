// Package config loads receiver configuration from file and environment:
// the set of physical channels with their bands, scrambling settings and
// bit sources, plus logging, metrics, MQTT, web and persistence sections.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level receiver configuration.
type Config struct {
	Channels    map[string]ChannelConfig `mapstructure:"channels"`
	Logging     LoggingConfig            `mapstructure:"logging"`
	Metrics     MetricsConfig            `mapstructure:"metrics"`
	MQTT        MQTTConfig               `mapstructure:"mqtt"`
	Web         WebConfig                `mapstructure:"web"`
	Persistence PersistenceConfig        `mapstructure:"persistence"`
}

// ChannelConfig configures one physical channel and its bit source.
type ChannelConfig struct {
	Band          string `mapstructure:"band"`           // "uhf" or "vhf"
	RCHType       string `mapstructure:"rch_type"`       // "control" or "traffic"
	SCR           int    `mapstructure:"scr"`            // fixed key, or -1 for detect
	SCRConfidence int    `mapstructure:"scr_confidence"` // commit threshold for blind detection

	Source SourceConfig `mapstructure:"source"`
}

// SourceConfig selects and configures the bit source feeding a channel.
type SourceConfig struct {
	Type string `mapstructure:"type"` // "file", "udp", or "stdin"
	Path string `mapstructure:"path"` // file path, for type "file"
	Addr string `mapstructure:"addr"` // listen address, for type "udp"
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// MQTTConfig configures the event publisher.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// WebConfig configures the dashboard server.
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// PersistenceConfig configures the SCR store.
type PersistenceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from built-in defaults, then configFile (or, if
// empty, "config.yaml" in the working directory, ./configs or
// /etc/tetrapol-phys), then environment variables prefixed TETRAPOL_, each
// overriding the one before it.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/tetrapol-phys")
	}

	viper.SetEnvPrefix("TETRAPOL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file; defaults and env vars still apply
		} else if os.IsNotExist(err) {
			// explicitly-named file missing; same as above
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.addr", ":9090")
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "tetrapol")
	viper.SetDefault("mqtt.client_id", "tetrapol-phys")
	viper.SetDefault("mqtt.qos", 0)
	viper.SetDefault("mqtt.retained", false)

	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8088)

	viper.SetDefault("persistence.enabled", true)
	viper.SetDefault("persistence.path", "tetrapol-scr.db")
}
