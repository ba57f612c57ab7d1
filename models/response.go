package models

// TimingInfo reports where the request time was spent.
type TimingInfo struct {
	TotalMs  int64 `json:"total_ms"`
	SearchMs int64 `json:"search_ms,omitempty"`
}

// SearchResponse is the payload returned by POST /api/v1/search.
// An empty Records slice with Success=true is a successful run that
// matched nothing, which is distinct from a failed run.
type SearchResponse struct {
	Success     bool                 `json:"success"`
	Term        string               `json:"term,omitempty"`
	Total       int                  `json:"total"`
	Pages       int                  `json:"pages"`
	Records     []RegistrationRecord `json:"records,omitempty"`
	CacheStatus string               `json:"cache_status,omitempty"` // "hit" or "miss"
	Timing      TimingInfo           `json:"timing"`
	Error       *ErrorDetail         `json:"error,omitempty"`
}

// SearchJobResponse is the immediate response for POST /api/v1/search/async.
type SearchJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SearchJobStatusResponse is the response for GET /api/v1/search/:id.
type SearchJobStatusResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Term   string          `json:"term"`
	Pages  int             `json:"pages"`
	Total  int             `json:"total"`
	Result *SearchResponse `json:"result,omitempty"`
}

// SearchJob tracks an in-progress async search.
type SearchJob struct {
	ID            string
	Status        string // "processing", "completed", "failed"
	Term          string
	Pages         int
	Total         int
	Result        *SearchResponse
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}

// PoolStats is a snapshot of browser page pool usage.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// TargetStatus reports the reachability probe of the registration database.
type TargetStatus struct {
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	Title      string `json:"title,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string       `json:"status"`
	Uptime    string       `json:"uptime"`
	PoolStats PoolStats    `json:"pool"`
	Target    TargetStatus `json:"target"`
	Version   string       `json:"version"`
}
