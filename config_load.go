package authflow

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment variable read by LoadConfig.
const envPrefix = "AUTHFLOW_"

// LoadConfig builds a Config from a dotenv file (skipped when the path
// is empty or missing) layered under AUTHFLOW_* environment variables.
// Environment wins. Unset keys fall back to defaults.
//
// Recognized keys, shown as environment names:
//
//	AUTHFLOW_SESSION_TTL            duration, e.g. "10h"
//	AUTHFLOW_ROUTE_DASHBOARD        path
//	AUTHFLOW_ROUTE_LOGIN            path
//	AUTHFLOW_ROUTE_RESET_PASSWORD   path
//	AUTHFLOW_RESEND_COOLDOWN_SEC    integer
//	AUTHFLOW_RESET_REDIRECT_DELAY   duration, e.g. "1500ms"
//	AUTHFLOW_AUDIT_ENABLED          bool
//	AUTHFLOW_AUDIT_BUFFER           integer
//	AUTHFLOW_METRICS_ENABLED        bool
func LoadConfig(envPath string) (Config, error) {
	k := koanf.New(".")

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := k.Load(file.Provider(envPath), dotenv.Parser()); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return s
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaultConfig()

	if v := lookup(k, "SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sSESSION_TTL: %w", envPrefix, err)
		}
		cfg.Session.TTL = d
	}
	if v := lookup(k, "ROUTE_DASHBOARD"); v != "" {
		cfg.Routes.Dashboard = v
	}
	if v := lookup(k, "ROUTE_LOGIN"); v != "" {
		cfg.Routes.Login = v
	}
	if v := lookup(k, "ROUTE_RESET_PASSWORD"); v != "" {
		cfg.Routes.ResetPassword = v
	}
	if v := lookup(k, "RESEND_COOLDOWN_SEC"); v != "" {
		n, err := parseInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sRESEND_COOLDOWN_SEC: %w", envPrefix, err)
		}
		cfg.Resend.CooldownSeconds = n
	}
	if v := lookup(k, "RESET_REDIRECT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sRESET_REDIRECT_DELAY: %w", envPrefix, err)
		}
		cfg.Reset.RedirectDelay = d
	}
	if v := lookup(k, "AUDIT_ENABLED"); v != "" {
		cfg.Audit.Enabled = parseBool(v)
	}
	if v := lookup(k, "AUDIT_BUFFER"); v != "" {
		n, err := parseInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sAUDIT_BUFFER: %w", envPrefix, err)
		}
		cfg.Audit.BufferSize = n
	}
	if v := lookup(k, "METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// lookup reads a key either bare (dotenv file) or with the environment
// prefix attached.
func lookup(k *koanf.Koanf, key string) string {
	if v := k.String(envPrefix + key); v != "" {
		return v
	}
	return k.String(key)
}

func parseInt(v string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v))
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
