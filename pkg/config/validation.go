package config

import (
	"fmt"
	"strings"
)

// validate checks cross-field invariants that mapstructure tags alone
// cannot express.
func validate(cfg *Config) error {
	for name, ch := range cfg.Channels {
		band := strings.ToLower(ch.Band)
		if band != "uhf" && band != "vhf" {
			return fmt.Errorf("channel %s: band must be uhf or vhf, got %q", name, ch.Band)
		}

		rch := strings.ToLower(ch.RCHType)
		if rch != "control" && rch != "traffic" {
			return fmt.Errorf("channel %s: rch_type must be control or traffic, got %q", name, ch.RCHType)
		}

		if ch.SCR < -1 || ch.SCR > 127 {
			return fmt.Errorf("channel %s: scr must be -1 (detect) or in 0..127, got %d", name, ch.SCR)
		}
		if ch.SCR == -1 && ch.SCRConfidence <= 0 {
			return fmt.Errorf("channel %s: scr_confidence must be positive when scr is detect", name)
		}

		switch ch.Source.Type {
		case "file":
			if ch.Source.Path == "" {
				return fmt.Errorf("channel %s: source.path is required for source type file", name)
			}
		case "udp":
			if ch.Source.Addr == "" {
				return fmt.Errorf("channel %s: source.addr is required for source type udp", name)
			}
		case "stdin":
			// no extra fields required
		default:
			return fmt.Errorf("channel %s: source.type must be file, udp, or stdin, got %q", name, ch.Source.Type)
		}
	}

	if cfg.Web.Enabled && (cfg.Web.Port <= 0 || cfg.Web.Port > 65535) {
		return fmt.Errorf("web.port must be between 1 and 65535")
	}

	if cfg.MQTT.Enabled && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	if cfg.Persistence.Enabled && cfg.Persistence.Path == "" {
		return fmt.Errorf("persistence.path is required when persistence is enabled")
	}

	return nil
}
