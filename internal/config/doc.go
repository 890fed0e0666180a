// Package config loads and validates service configuration from the
// environment (optionally seeded from a .env file in development).
package config
