package handler

import "github.com/keydenlabs/keyden/internal/storage"

// ErrorResponse is the JSON error body for admin endpoints.
//
// @design DS-0302
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body for the health probes.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// DatabaseStats is one database row in the stats response.
//
// @design DS-0302
type DatabaseStats struct {
	Name      string `json:"name"`
	Keys      int    `json:"keys"`
	Protected bool   `json:"protected"`
}

// StatsResponse is the body for GET /v1/stats.
//
// @design DS-0302
type StatsResponse struct {
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Backend       string                `json:"backend"`
	Totals        storage.RegistryStats `json:"totals"`
	Databases     []DatabaseStats       `json:"databases"`
}
