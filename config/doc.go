// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Defaults for ports, timeouts and polling cadences are applied after validation.
package config
