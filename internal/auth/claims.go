package auth

// Common interface for authenticated request identity, regardless of whether
// the request arrived with an API key or a bearer token.
type UserClaims interface {
	UserID() string
	ExternalID() string
	Source() string
	HasPermission(action string) bool
}

type JWTClaims struct {
	UserUUID      string
	ExternalIDVal string
}

func (c *JWTClaims) UserID() string            { return c.UserUUID }
func (c *JWTClaims) ExternalID() string        { return c.ExternalIDVal }
func (c *JWTClaims) Source() string            { return "JWT" }
func (c *JWTClaims) HasPermission(string) bool { return true }

type APIKeyClaims struct {
	UserUUID      string
	ExternalIDVal string
}

func (c *APIKeyClaims) UserID() string            { return c.UserUUID }
func (c *APIKeyClaims) ExternalID() string        { return c.ExternalIDVal }
func (c *APIKeyClaims) Source() string            { return "API_KEY" }
func (c *APIKeyClaims) HasPermission(string) bool { return true }
