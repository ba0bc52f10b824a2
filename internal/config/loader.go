package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "GOALBOARD_"
	ConfigPathEnv = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GOALBOARD_CONFIG is set
//  3. env (prefix GOALBOARD_)
//
// List and map keys accept comma-separated env values:
// GOALBOARD_CORS_ORIGINS=https://a,https://b and
// GOALBOARD_TEAM_POLICIES=er=report-first,carteira-ii=platform-first.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %v", ErrLoadConfig, path, err)
		}
	}

	// GOALBOARD_QUEUE_SIZE -> queue_size; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	// The config path is not a Config field.
	k.Delete("config")

	if err := processListFields(k); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// processListFields turns comma-separated env strings into the list and map
// shapes a YAML file would produce.
func processListFields(k *koanf.Koanf) error {
	if v, ok := k.Get("cors_origins").(string); ok {
		k.Delete("cors_origins")
		if origins := splitList(v); len(origins) > 0 {
			if err := k.Set("cors_origins", origins); err != nil {
				return fmt.Errorf("%w: cors_origins: %v", ErrLoadConfig, err)
			}
		}
	}

	if v, ok := k.Get("team_policies").(string); ok {
		k.Delete("team_policies")
		policies := make(map[string]any)
		for _, pair := range splitList(v) {
			team, policy, found := strings.Cut(pair, "=")
			if !found {
				return fmt.Errorf("%w: team_policies entry %q is not team=policy", ErrInvalidConfig, pair)
			}
			policies[strings.TrimSpace(team)] = strings.TrimSpace(policy)
		}
		if len(policies) > 0 {
			if err := k.Set("team_policies", policies); err != nil {
				return fmt.Errorf("%w: team_policies: %v", ErrLoadConfig, err)
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
