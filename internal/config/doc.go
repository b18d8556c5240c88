// Package config loads the churnd configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - HTTPPort               — port for the REST API, WebSocket hub and
//     /metrics (default 8080)
//   - Auth.Mode              — "apikey" or "none"
//   - Auth.KeyEnv            — environment variable holding the expected key
//   - Report.TTL             — how long a report stays live (default 30m)
//   - Report.RefreshInterval — reload/recompute cadence (default 10m)
//   - Sources                — csv files and postgres tables to analyze
//   - Alerts                 — threshold rules and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
// Secrets (API keys, DSNs, webhook URLs) are referenced by environment
// variable name, never stored in the file.
package config
