package domain

import "time"

// ShareToken grants time- and usage-limited permission to copy a cookbook.
// The Token string is the only credential: anyone holding it can resolve the
// cookbook, and any authenticated holder can redeem it.
//
// Dead tokens are never physically deleted (except when their cookbook is
// deleted); liveness is always evaluated through IsAlive.
type ShareToken struct {
	ID         string     `json:"id"`
	CookbookID string     `json:"cookbook_id"`
	Token      string     `json:"token"`
	CreatedBy  string     `json:"created_by"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UsageCount int        `json:"usage_count"`
	MaxUsages  *int       `json:"max_usages,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsExpired reports whether the token has passed its expiration time.
// Tokens without an ExpiresAt never expire.
func (t *ShareToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// IsExhausted reports whether the token has reached its usage cap.
// Tokens without MaxUsages are unlimited.
func (t *ShareToken) IsExhausted() bool {
	return t.MaxUsages != nil && t.UsageCount >= *t.MaxUsages
}

// IsAlive is the single dead/alive predicate for share tokens. Resolution
// and redemption both go through here so they can never disagree.
func (t *ShareToken) IsAlive(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsExhausted()
}

// Status returns a human-readable status string for owner-facing listings.
func (t *ShareToken) Status(now time.Time) string {
	switch {
	case t.IsExpired(now):
		return "expired"
	case t.IsExhausted():
		return "exhausted"
	default:
		return "active"
	}
}
