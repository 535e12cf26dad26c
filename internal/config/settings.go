package config

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/maa-labs/maa-cli/internal/branding"
)

// Settings is the process-wide configuration, read once at startup and
// handed to every collaborator that talks to the network or the cache.
type Settings struct {
	// Proxy is an http(s) proxy URL used for git and HTTP traffic. Empty means direct.
	Proxy string
	// Token is a GitHub personal access token. Empty means anonymous.
	Token string

	TemplateURL    string
	TemplateBranch string

	// Mirror, when set, replaces the host of release asset download URLs.
	Mirror string

	// CacheDir holds the template checkout and downloaded release archives.
	CacheDir string
}

// LoadSettings reads the config file and environment and returns the
// resulting Settings with defaults applied. Load must not have side effects
// beyond viper initialization, so it is safe to call more than once.
func LoadSettings() Settings {
	Load()
	s := Settings{
		Proxy:          Get(KeyProxy),
		Token:          Get(KeyToken),
		TemplateURL:    Get(KeyTemplateURL),
		TemplateBranch: Get(KeyTemplateBranch),
		Mirror:         Get(KeyMirror),
		CacheDir:       Get(KeyCacheDir),
	}
	return s.WithDefaults()
}

// WithDefaults fills empty fields from branding and the config directory.
func (s Settings) WithDefaults() Settings {
	if s.TemplateURL == "" {
		s.TemplateURL = branding.TemplateRepoURL()
	}
	if s.TemplateBranch == "" {
		s.TemplateBranch = branding.TemplateBranch()
	}
	if s.CacheDir == "" {
		s.CacheDir = filepath.Join(Dir(), "cache")
	}
	return s
}

// TemplateDir returns the local checkout path of the template repository.
func (s Settings) TemplateDir() string {
	return filepath.Join(s.CacheDir, "template")
}

// ReleaseDir returns the root of the release archive cache.
func (s Settings) ReleaseDir() string {
	return filepath.Join(s.CacheDir, "releases")
}

// HTTPClient returns a client routed through the configured proxy.
func (s Settings) HTTPClient() (*http.Client, error) {
	if s.Proxy == "" {
		return http.DefaultClient, nil
	}
	proxyURL, err := url.Parse(s.Proxy)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL %q: %w", s.Proxy, err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	return &http.Client{Transport: transport}, nil
}
