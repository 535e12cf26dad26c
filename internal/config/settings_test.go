package config

import (
	"net/http"
	"path/filepath"
	"testing"
)

func TestSettingsWithDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MAA_HOME", home)

	s := Settings{}.WithDefaults()
	if s.TemplateURL == "" {
		t.Error("TemplateURL should default from branding")
	}
	if s.TemplateBranch != "main" {
		t.Errorf("TemplateBranch = %q, want %q", s.TemplateBranch, "main")
	}
	if want := filepath.Join(home, "cache"); s.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", s.CacheDir, want)
	}
	if want := filepath.Join(home, "cache", "template"); s.TemplateDir() != want {
		t.Errorf("TemplateDir() = %q, want %q", s.TemplateDir(), want)
	}
}

func TestSettingsKeepsExplicitValues(t *testing.T) {
	s := Settings{TemplateURL: "file:///tmp/tpl", TemplateBranch: "dev", CacheDir: "/var/cache/maa"}.WithDefaults()
	if s.TemplateURL != "file:///tmp/tpl" || s.TemplateBranch != "dev" || s.CacheDir != "/var/cache/maa" {
		t.Errorf("explicit values overwritten: %+v", s)
	}
}

func TestHTTPClient(t *testing.T) {
	t.Run("no proxy", func(t *testing.T) {
		c, err := Settings{}.HTTPClient()
		if err != nil {
			t.Fatal(err)
		}
		if c != http.DefaultClient {
			t.Error("expected default client without proxy")
		}
	})

	t.Run("with proxy", func(t *testing.T) {
		c, err := Settings{Proxy: "http://127.0.0.1:7890"}.HTTPClient()
		if err != nil {
			t.Fatal(err)
		}
		tr, ok := c.Transport.(*http.Transport)
		if !ok || tr.Proxy == nil {
			t.Fatal("expected proxied transport")
		}
		req, _ := http.NewRequest("GET", "https://api.github.com", nil)
		u, err := tr.Proxy(req)
		if err != nil {
			t.Fatal(err)
		}
		if u.Host != "127.0.0.1:7890" {
			t.Errorf("proxy host = %q", u.Host)
		}
	})

	t.Run("bad proxy", func(t *testing.T) {
		if _, err := (Settings{Proxy: "://bad"}).HTTPClient(); err == nil {
			t.Error("expected error for malformed proxy URL")
		}
	})
}

func TestLoadSettingsFromConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MAA_HOME", home)

	Load()
	if err := Set(KeyProxy, "http://proxy.local:3128"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s := LoadSettings()
	if s.Proxy != "http://proxy.local:3128" {
		t.Errorf("Proxy = %q", s.Proxy)
	}
}
