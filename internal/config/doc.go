// Package config manages user-level settings stored at ~/.maa-cli/config.yaml.
// Settings such as the network proxy, the GitHub token, and the template
// repository are read once into a Settings value that callers pass explicitly
// to the template and release providers.
package config
