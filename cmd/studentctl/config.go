package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STUDENTCTL_"

type cliConfig struct {
	APIURL    string        `koanf:"api_url"`
	TokenFile string        `koanf:"token_file"`
	Timeout   time.Duration `koanf:"timeout"`
	ModelType string        `koanf:"model_type"`
}

func defaultConfig() cliConfig {
	tokenFile := ".studentctl-token"
	if home, err := os.UserHomeDir(); err == nil {
		tokenFile = filepath.Join(home, ".studentctl", "token.json")
	}
	return cliConfig{
		APIURL:    "http://localhost:8080",
		TokenFile: tokenFile,
		Timeout:   30 * time.Second,
		ModelType: "ml",
	}
}

// loadConfig layers defaults, an optional YAML file and STUDENTCTL_ env vars,
// lowest precedence first. An explicit path wins over STUDENTCTL_CONFIG.
func loadConfig(path string) (cliConfig, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cliConfig{}, err
		}
	}

	// STUDENTCTL_API_URL -> api_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cliConfig{}, err
	}

	cfg := defaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cliConfig{}, err
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return cliConfig{}, errors.New("api_url must not be empty")
	}
	if cfg.TokenFile == "" {
		return cliConfig{}, errors.New("token_file must not be empty")
	}
	if cfg.Timeout <= 0 {
		return cliConfig{}, errors.New("timeout must be positive")
	}
	return cfg, nil
}
