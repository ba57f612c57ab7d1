package models

// SearchRequest is the payload for POST /api/v1/search and
// POST /api/v1/search/async.
type SearchRequest struct {
	// ActiveIngredient is the ingredient name to search for (English).
	// Required; the only validation is non-emptiness.
	ActiveIngredient string `json:"active_ingredient" binding:"required"`

	// Timeout is the maximum duration in seconds for the entire run
	// (search + all pages). Default: 600. Max: 1800.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=1800"`

	// MaxAge enables cache lookup: a cached result younger than MaxAge
	// milliseconds is returned without touching the browser.
	// Default: 0 (no cache).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL receives search.page / search.completed / search.failed
	// events for async jobs.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 600
	}
}
