package models

// ParseResponse is the body returned by POST /api/v1/parse.
type ParseResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Stage   string       `json:"stage,omitempty"` // cascade stage that produced the records
	Offers  []Offer      `json:"offers"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Runs    int64  `json:"runs"`
	Version string `json:"version"`
}
