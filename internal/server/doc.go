// Package server exposes the HTTP API: presence log endpoints, user
// management, weekly statistics, and the observability surface (health
// probes and Prometheus metrics). Handlers translate transport concerns
// into application layer calls and map domain errors onto HTTP statuses.
package server
