// Package usage is the per-identity analysis ledger: lifetime and daily
// counters behind an admission check the orchestrator consults before any
// job is created.
package usage

import (
	"time"
)

const (
	TierFree  = "free"
	TierPro   = "pro"
	TierAdmin = "admin"
)

const (
	ReasonFreeLimit  = "free_limit_reached"
	ReasonDailyLimit = "daily_limit_reached"
)

// Identity is the caller on whose behalf an analysis runs. Auth lives
// outside this service; the identity arrives on the request.
type Identity struct {
	ID   string `json:"id"`
	Tier string `json:"tier"`
}

// Unrestricted reports whether the identity bypasses admission control.
func (i Identity) Unrestricted() bool {
	return i.Tier == TierPro || i.Tier == TierAdmin
}

// Record is the persisted counter row for one identity.
type Record struct {
	IdentityID       string    `json:"identity_id"`
	LifetimeCount    int       `json:"lifetime_count"`
	DailyCount       int       `json:"daily_count"`
	DailyWindowStart time.Time `json:"daily_window_start"`
}

// Denial explains a rejected admission check.
type Denial struct {
	Reason string `json:"reason"`
	Limit  int    `json:"limit"`
}

// Stats is the read model for the usage endpoint.
type Stats struct {
	Tier          string `json:"tier"`
	TotalAnalyses int    `json:"total_analyses"`
	TodayAnalyses int    `json:"today_analyses"`
	LifetimeLimit int    `json:"lifetime_limit"`
	DailyLimit    int    `json:"daily_limit"`
}
