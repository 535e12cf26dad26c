package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maa-labs/maa-cli/internal/branding"
	"github.com/spf13/viper"
)

// Config keys understood by the CLI.
const (
	KeyProxy          = "proxy"
	KeyToken          = "token"
	KeyTemplateURL    = "template_url"
	KeyTemplateBranch = "template_branch"
	KeyMirror         = "mirror"
	KeyCacheDir       = "cache_dir"
)

// ErrUnknownKey is returned by Set for keys not listed by Keys.
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns every config key in display order.
func Keys() []string {
	return []string{KeyProxy, KeyToken, KeyTemplateURL, KeyTemplateBranch, KeyMirror, KeyCacheDir}
}

// urlKeys must hold absolute http(s) URLs when set.
var urlKeys = []string{KeyProxy, KeyMirror}

// Dir returns the CLI home, ~/.maa-cli unless MAA_HOME is set.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return branding.HomeDir()
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the config file path inside Dir.
func FilePath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load points viper at the config file and the MAA_* environment. A missing
// file is not an error; every key then comes from the environment or the
// Settings defaults.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// Get returns the value of key, or "" when unset.
func Get(key string) string {
	return viper.GetString(key)
}

// Set validates value for key and persists it. The file is kept private to
// the user because it may hold a GitHub token.
func Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w %q (known: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	if value != "" && slices.Contains(urlKeys, key) {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
		}
	}

	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	viper.Set(key, value)
	path := FilePath()
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}
