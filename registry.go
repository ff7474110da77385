package identity

import "encoding/json"

// ClaimDefinition describes one admittable custom claim and its visibility
// rule. The zero value is a private claim: never admitted for non-admins.
type ClaimDefinition struct {
	Type           string          `json:"type"`
	Items          json.RawMessage `json:"items,omitempty"`
	Description    string          `json:"description"`
	DefaultAllowed bool            `json:"default_allowed"`
	Required       bool            `json:"required,omitempty"`
	Sensitive      bool            `json:"sensitive,omitempty"`
	AdminOnly      bool            `json:"admin_only,omitempty"`
}

// ClaimsRegistry is the authoritative mapping of claim key to definition.
// The persisted form is a flat JSON object, one property per claim key.
// Replacement of the whole document is the only mutation primitive; the
// store's per-claim operations re-serialize the entire registry.
type ClaimsRegistry map[string]ClaimDefinition

// Definition looks up a claim definition by key.
func (r ClaimsRegistry) Definition(key string) (ClaimDefinition, bool) {
	def, ok := r[key]
	return def, ok
}

// Visible reports whether the claim identified by key may travel with the
// given user. A claim is visible when its definition allows it by default,
// when the user holds the "all" admin scope, or when the claim is marked
// admin-only and the user holds any admin scope. Unknown keys are never
// visible.
func (r ClaimsRegistry) Visible(user *User, key string) bool {
	def, ok := r[key]
	if !ok {
		return false
	}
	if def.DefaultAllowed {
		return true
	}
	if user.HasAllScope() {
		return true
	}
	return def.AdminOnly && user.IsAdmin()
}

// FilterClaims returns the subset of the user's custom claims the registry
// admits. It is the single filter applied both when a user record is loaded
// from disk and when a token is issued; the second application is redundant
// with deterministic inputs but keeps both call sites honest. Disallowed and
// unknown keys are dropped with a log entry, never an error: the system
// favors attenuating a record over rejecting it.
func (r ClaimsRegistry) FilterClaims(user *User, logger Logger) map[string]any {
	if logger == nil {
		logger = defLogger{}
	}
	allowed := map[string]any{}
	for key, value := range user.Claims {
		if _, ok := r[key]; !ok {
			logger.Warn("dropping unknown claim %q for user %s", key, user.ID)
			continue
		}
		if !r.Visible(user, key) {
			logger.Warn("dropping claim %q not visible for user %s", key, user.ID)
			continue
		}
		allowed[key] = value
	}
	return allowed
}

// Clone returns a copy of the registry safe to hand to callers.
func (r ClaimsRegistry) Clone() ClaimsRegistry {
	if r == nil {
		return nil
	}
	out := make(ClaimsRegistry, len(r))
	for key, def := range r {
		out[key] = def
	}
	return out
}
