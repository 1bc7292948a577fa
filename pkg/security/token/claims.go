package token

import (
	"slices"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// WildcardPermission grants every permission.
const WildcardPermission = "*"

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID      string
	Role        string
	Permissions []string
	Type        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	NotBefore   time.Time

	token *paseto.Token
}

// HasPermission reports whether permission, or the wildcard, was granted.
func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, WildcardPermission) ||
		slices.Contains(c.Permissions, permission)
}

// HasAnyPermission reports whether at least one of permissions was granted.
// An empty list is always satisfied.
func (c *Claims) HasAnyPermission(permissions []string) bool {
	if len(permissions) == 0 {
		return true
	}
	return slices.ContainsFunc(permissions, c.HasPermission)
}

// GetString reads a custom string claim.
func (c *Claims) GetString(key string) (string, error) {
	if c.token == nil {
		return "", ErrInvalidToken
	}
	return c.token.GetString(key)
}

// Get unmarshals a custom claim into v.
func (c *Claims) Get(key string, v any) error {
	if c.token == nil {
		return ErrInvalidToken
	}
	return c.token.Get(key, v)
}

func (c *Claims) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

func (c *Claims) IsAccess() bool  { return c.Type == TypeAccess }
func (c *Claims) IsRefresh() bool { return c.Type == TypeRefresh }
