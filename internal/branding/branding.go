// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded into the binary; forks edit it to point the CLI
// at their own template repository and home directory.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	TemplateRepoURL string `yaml:"template_repo_url"`
	TemplateBranch  string `yaml:"template_branch"`
	GitHubAPI       string `yaml:"github_api"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:         "maa",
			DisplayName:     "MaaFramework CLI",
			Description:     "Project scaffolding and dependency fetching for MaaFramework projects",
			HomeDir:         ".maa-cli",
			EnvPrefix:       "MAA",
			TemplateRepoURL: "https://github.com/neko-para/maa-template",
			TemplateBranch:  "main",
			GitHubAPI:       "https://api.github.com",
		}

		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "maa").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".maa-cli").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "MAA").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// TemplateRepoURL returns the default git URL of the project template.
func TemplateRepoURL() string { load(); return defaults.TemplateRepoURL }

// TemplateBranch returns the default branch tracked for the template.
func TemplateBranch() string { load(); return defaults.TemplateBranch }

// GitHubAPI returns the base URL of the GitHub REST API.
func GitHubAPI() string { load(); return defaults.GitHubAPI }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("PROXY") → "MAA_PROXY".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
