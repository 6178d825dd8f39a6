// Package config loads, parses and validates application settings from
// defaults, an optional config.yaml, an optional .env file and TASKBOARD_*
// environment variables.
package config
