package identity

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// UserStatus is the user's lifecycle status
type UserStatus = string

const (
	// UserStatusActive may log in and receive tokens
	UserStatusActive UserStatus = "active"
	// UserStatusInactive is disabled without prejudice
	UserStatusInactive UserStatus = "inactive"
	// UserStatusSuspended was disabled by an administrator
	UserStatusSuspended UserStatus = "suspended"
)

// AdminScopeAll is the distinguished admin scope granting authority over
// every organization.
const AdminScopeAll = "all"

// User is the canonical subject record. The store owns the authoritative
// copy; every accessor hands out clones.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"password_hash"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Status        UserStatus     `json:"status"`
	Verified      bool           `json:"verified"`
	Authenticated *string        `json:"authenticated"`
	Admin         []string       `json:"admin"`
	Org           string         `json:"org"`
	Claims        map[string]any `json:"claims"`
	MFASecret     *string        `json:"mfa_secret"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewUser returns an active, unverified user with a fresh identifier.
func NewUser(email, passwordHash, firstName, lastName, org string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           newRecordID("user"),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Status:       UserStatusActive,
		Admin:        []string{},
		Org:          org,
		Claims:       map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate will run validation rules
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&u.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&u.Org, validation.Required),
		validation.Field(&u.Status, validation.Required, validation.In(
			UserStatusActive, UserStatusInactive, UserStatusSuspended,
		)),
	)
}

// FullName joins first and last name
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// IsAdmin reports whether the user holds any admin scope at all.
func (u *User) IsAdmin() bool {
	return len(u.Admin) > 0
}

// HasAllScope reports whether the user holds the distinguished "all" scope.
func (u *User) HasAllScope() bool {
	for _, scope := range u.Admin {
		if scope == AdminScopeAll {
			return true
		}
	}
	return false
}

// IsAdminFor reports whether the user administers the given organization.
func (u *User) IsAdminFor(org string) bool {
	if u.HasAllScope() {
		return true
	}
	for _, scope := range u.Admin {
		if scope == org {
			return true
		}
	}
	return false
}

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Roles reads the conventional "roles" claim, if present.
func (u *User) Roles() []string {
	raw, ok := u.Claims["roles"]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var roles []string
	for _, item := range items {
		if role, ok := item.(string); ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// Clone returns a deep copy safe to hand to callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Admin = append([]string(nil), u.Admin...)
	if u.Claims != nil {
		out.Claims = make(map[string]any, len(u.Claims))
		for k, v := range u.Claims {
			out.Claims[k] = v
		}
	}
	if u.Authenticated != nil {
		v := *u.Authenticated
		out.Authenticated = &v
	}
	if u.MFASecret != nil {
		v := *u.MFASecret
		out.MFASecret = &v
	}
	return &out
}

// ClientType discriminates public from confidential OAuth clients
type ClientType = string

const (
	// ClientTypePublic cannot hold a secret
	ClientTypePublic ClientType = "public"
	// ClientTypeConfidential authenticates with a secret
	ClientTypeConfidential ClientType = "confidential"
)

// Client is a registered relying application.
type Client struct {
	ClientID         string     `json:"client_id"`
	ClientSecretHash *string    `json:"client_secret_hash"`
	Name             string     `json:"name"`
	ClientType       ClientType `json:"client_type"`
	RedirectURIs     []string   `json:"redirect_uris"`
	AllowedScopes    []string   `json:"allowed_scopes"`
	RequirePKCE      bool       `json:"require_pkce"`
	GrantTypes       []string   `json:"grant_types"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Validate will run validation rules
func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.ClientType, validation.Required, validation.In(
			ClientTypePublic, ClientTypeConfidential,
		)),
	)
}

// Clone returns a deep copy safe to hand to callers.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	out.RedirectURIs = append([]string(nil), c.RedirectURIs...)
	out.AllowedScopes = append([]string(nil), c.AllowedScopes...)
	out.GrantTypes = append([]string(nil), c.GrantTypes...)
	if c.ClientSecretHash != nil {
		v := *c.ClientSecretHash
		out.ClientSecretHash = &v
	}
	return &out
}

// Organization is a tenant record.
type Organization struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Validate will run validation rules
func (o Organization) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ID, validation.Required),
		validation.Field(&o.Name, validation.Required, validation.Length(1, 200)),
	)
}

// Clone returns a deep copy safe to hand to callers.
func (o *Organization) Clone() *Organization {
	if o == nil {
		return nil
	}
	out := *o
	if o.Metadata != nil {
		out.Metadata = make(map[string]any, len(o.Metadata))
		for k, v := range o.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Group is a named collection of users maintained for downstream policy.
type Group struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Validate will run validation rules
func (g Group) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.ID, validation.Required),
		validation.Field(&g.Name, validation.Required, validation.Length(1, 200)),
	)
}

// Clone returns a deep copy safe to hand to callers.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	out := *g
	if g.Metadata != nil {
		out.Metadata = make(map[string]any, len(g.Metadata))
		for k, v := range g.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// newRecordID mirrors the persisted id shape: "<prefix>-<32 hex chars>".
func newRecordID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
