package domain

// User is an account on the server. The ID is the stable identity every
// other entity references; email is only used for login and as a display
// fallback.
type User struct {
	Timestamps
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string `json:"display_name,omitempty"`
}

// Name returns the best human-readable name for the user:
// display name if set, otherwise the email handle.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
