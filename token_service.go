package identity

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// reservedClaimKeys are the JWT payload properties the service owns. Custom
// claims flatten into the payload alongside them, so a registered claim
// using one of these keys is skipped at issue time rather than letting it
// shadow a protocol field.
var reservedClaimKeys = map[string]struct{}{
	"iss":   {},
	"sub":   {},
	"aud":   {},
	"exp":   {},
	"nbf":   {},
	"iat":   {},
	"jti":   {},
	"email": {},
	"name":  {},
	"org":   {},
	"admin": {},
}

// IdentityClaims is the token payload: the registered JWT claims, the fixed
// identity properties, and the registry-admitted custom claims flattened
// into the same JSON object.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Org    string         `json:"org"`
	Admin  []string       `json:"admin"`
	Claims map[string]any `json:"-"`
}

type identityClaimsAlias IdentityClaims

// MarshalJSON flattens the custom claims into the payload object. Custom
// keys never overwrite the fixed properties.
func (c IdentityClaims) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(identityClaimsAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Claims) == 0 {
		return base, nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(base, &payload); err != nil {
		return nil, err
	}
	for key, value := range c.Claims {
		if _, reserved := reservedClaimKeys[key]; reserved {
			continue
		}
		payload[key] = value
	}
	return json.Marshal(payload)
}

// UnmarshalJSON restores the fixed properties and collects every remaining
// payload key back into Claims.
func (c *IdentityClaims) UnmarshalJSON(data []byte) error {
	var alias identityClaimsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	for key := range reservedClaimKeys {
		delete(payload, key)
	}

	*c = IdentityClaims(alias)
	if len(payload) > 0 {
		c.Claims = payload
	}
	return nil
}

// jwtTokenService signs and verifies HMAC-SHA256 tokens.
type jwtTokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   []string
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption configures a token service.
type TokenServiceOption func(*jwtTokenService)

// WithTokenLogger sets the logger the service reports through.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(t *jwtTokenService) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTokenClock overrides the service's time source.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(t *jwtTokenService) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenService returns a TokenService signing HS256 tokens with the given
// key and lifetime. The audience is stamped into issued tokens but is not
// checked on verification: resource servers decide for themselves which
// audiences they accept.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, opts ...TokenServiceOption) TokenService {
	service := &jwtTokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   audience,
		logger:     defLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Issue signs a token for the user. Custom claims pass through the registry
// filter on the way in, so a token can never carry a claim the registry does
// not admit for its subject.
func (t *jwtTokenService) Issue(user *User, registry ClaimsRegistry) (string, error) {
	now := t.now().UTC()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings(t.audience),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email:  user.Email,
		Name:   user.FullName(),
		Org:    user.Org,
		Admin:  user.Admin,
		Claims: registry.FilterClaims(user, t.logger),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", wrapIO(err, "could not sign token")
	}
	return signed, nil
}

// Verify parses and validates a token string and returns its claims.
func (t *jwtTokenService) Verify(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		options = append(options, jwt.WithIssuer(t.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.signingKey, nil
	}, options...)
	if err != nil {
		return nil, mapTokenError(err)
	}

	return claims, nil
}

// Refresh verifies a refresh token and issues a fresh access token from the
// user's current record and the current registry. Claims in the old token do
// not carry over: revoked claims and demoted scopes disappear on refresh.
// The refresh token's subject must match the user being issued for.
func (t *jwtTokenService) Refresh(refreshToken string, user *User, registry ClaimsRegistry) (string, error) {
	claims, err := t.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Subject != user.ID {
		return "", ErrTokenSubjectMismatch
	}
	return t.Issue(user, registry)
}

// mapTokenError collapses library parse failures into this package's
// sentinels so callers match on category, not library internals.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
