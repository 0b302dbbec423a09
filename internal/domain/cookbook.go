package domain

// Attribution records where a copied cookbook came from. It is written once
// when the Duplication Engine creates the copy and never modified afterward.
type Attribution struct {
	CookbookID string `json:"cookbook_id"`
	OwnerName  string `json:"owner_name"`
}

// Cookbook is a named, owned collection of recipes. Cookbooks are the
// privacy boundary of the system: recipes are visible exactly when their
// parent cookbook is visible.
type Cookbook struct {
	Timestamps
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	IsPublic    bool         `json:"is_public"`
	CopiedFrom  *Attribution `json:"copied_from,omitempty"`
}

// IsCopy reports whether this cookbook was cloned from another one.
func (c *Cookbook) IsCopy() bool {
	return c.CopiedFrom != nil
}

// VisibleTo reports whether the given user may read this cookbook.
// Owners always see their cookbooks; everyone else only sees public ones.
func (c *Cookbook) VisibleTo(userID string) bool {
	return c.OwnerID == userID || c.IsPublic
}
