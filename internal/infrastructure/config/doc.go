// Package config loads and validates motorista bot configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// MOTORISTA_* environment variables. Secrets (bot token, login and report
// passwords) should always come from the environment rather than the file.
package config
