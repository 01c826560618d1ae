/*
Package audit
File: internal/audit/health.go
Description:
    Component C10's /health endpoint (spec.md §4.10: `{ok: true,
    uptimeSec}`), mounted alongside internal/transport's WebSocket
    upgrade handler on the chi router cmd/starforge/serve.go builds.
*/
package audit

import (
	"encoding/json"
	"net/http"
	"time"
)

// UptimeProvider reports how long the simulation engine has been
// running; implemented by sim.Engine.
type UptimeProvider interface {
	Uptime() time.Duration
}

// HealthPayload is the exact /health response shape spec.md §4.10 names.
type HealthPayload struct {
	OK        bool    `json:"ok"`
	UptimeSec float64 `json:"uptimeSec"`
}

// HealthHandler serves GET /health.
func HealthHandler(up UptimeProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(HealthPayload{
			OK:        true,
			UptimeSec: up.Uptime().Seconds(),
		})
	}
}
