// Package config loads and validates the checklist server configuration
// from a YAML file, including the project catalog shown to every user.
//
// Environment variables in the ${VAR_NAME} format are expanded before
// parsing. A missing projects list falls back to DefaultProjects.
package config
